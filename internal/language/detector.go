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

package language

import "strings"

// Detector resolves raw engine-detected language codes against the catalog.
// The STT engine reports whatever it heard; codes outside the catalog fall
// back to the last valid detection so one garbled utterance does not flip
// the session's source language.
type Detector struct {
	catalog  *Catalog
	lastGood string
}

// NewDetector creates a detector with an initial fallback language
func NewDetector(catalog *Catalog, fallback string) *Detector {
	return &Detector{
		catalog:  catalog,
		lastGood: fallback,
	}
}

// Resolve maps a raw detected code into the catalog, remembering the last
// valid detection as the fallback for unknown or empty codes.
func (d *Detector) Resolve(raw string) string {
	code := normalize(raw)
	if code == "" {
		return d.lastGood
	}

	if d.catalog.Contains(code) {
		d.lastGood = code
		return code
	}

	return d.lastGood
}

// Last returns the most recent valid detection
func (d *Detector) Last() string {
	return d.lastGood
}

// normalize lowercases and strips a regional suffix ("en-US" -> "en")
func normalize(raw string) string {
	code := strings.ToLower(strings.TrimSpace(raw))
	if idx := strings.IndexAny(code, "-_"); idx > 0 {
		code = code[:idx]
	}
	return code
}
