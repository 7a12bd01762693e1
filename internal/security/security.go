/*
 * This file is part of Lingo (https://github.com/lingolabs/lingo).
 * Copyright (C) 2025 Lingo Labs
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

package security

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrInvalidLanguageCode is returned when a language code format is invalid
	ErrInvalidLanguageCode = errors.New("invalid language code")

	// languageCodePattern validates ISO-639-ish codes supplied by clients
	languageCodePattern = regexp.MustCompile(`^[a-z]{2,3}(-[a-zA-Z]{2,4})?$`)
)

// SanitizeLogInput removes newline characters to prevent log injection attacks.
// This function should be used for all user-controlled data before logging,
// transcriptions and translations included.
func SanitizeLogInput(input string) string {
	sanitized := strings.ReplaceAll(input, "\n", "")
	sanitized = strings.ReplaceAll(sanitized, "\r", "")
	return sanitized
}

// ValidateLanguageCode ensures a client-supplied language code contains only
// safe characters before it is used in lookups or logged.
func ValidateLanguageCode(code string) error {
	if code == "" {
		return ErrInvalidLanguageCode
	}

	if !languageCodePattern.MatchString(code) {
		return ErrInvalidLanguageCode
	}

	return nil
}
