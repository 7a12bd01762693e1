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

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Info holds display metadata for one supported language
type Info struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Voice string `json:"voice"` // Preferred TTS voice for this language
}

// Catalog is a static mapping of language code to display metadata.
// It is immutable after construction and safe for concurrent lookups.
type Catalog struct {
	languages map[string]Info
}

// DefaultCatalog returns the built-in language set
func DefaultCatalog() *Catalog {
	return NewCatalog([]Info{
		{Code: "en", Name: "English", Voice: "af_heart"},
		{Code: "es", Name: "Spanish", Voice: "ef_dora"},
		{Code: "fr", Name: "French", Voice: "ff_siwis"},
	})
}

// NewCatalog builds a catalog from a list of language entries
func NewCatalog(entries []Info) *Catalog {
	languages := make(map[string]Info, len(entries))
	for _, entry := range entries {
		languages[entry.Code] = entry
	}
	return &Catalog{languages: languages}
}

// FromEnv builds a catalog from the LINGO_LANGUAGES environment variable
// ("code:name:voice,code:name:voice,..."), falling back to the default set.
func FromEnv() (*Catalog, error) {
	raw := os.Getenv("LINGO_LANGUAGES")
	if raw == "" {
		return DefaultCatalog(), nil
	}

	var entries []Info
	for _, part := range strings.Split(raw, ",") {
		fields := strings.Split(strings.TrimSpace(part), ":")
		if len(fields) < 2 || fields[0] == "" || fields[1] == "" {
			return nil, fmt.Errorf("invalid LINGO_LANGUAGES entry: %q", part)
		}
		info := Info{Code: fields[0], Name: fields[1]}
		if len(fields) > 2 {
			info.Voice = fields[2]
		}
		entries = append(entries, info)
	}

	return NewCatalog(entries), nil
}

// Lookup returns metadata for a language code
func (c *Catalog) Lookup(code string) (Info, bool) {
	info, ok := c.languages[code]
	return info, ok
}

// Contains reports whether the catalog knows the language code
func (c *Catalog) Contains(code string) bool {
	_, ok := c.languages[code]
	return ok
}

// Name returns the display name for a code, or the code itself when unknown
func (c *Catalog) Name(code string) string {
	if info, ok := c.languages[code]; ok {
		return info.Name
	}
	return code
}

// List returns all entries ordered by code
func (c *Catalog) List() []Info {
	entries := make([]Info, 0, len(c.languages))
	for _, info := range c.languages {
		entries = append(entries, info)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Code < entries[j].Code })
	return entries
}

// Len returns the number of catalog entries
func (c *Catalog) Len() int {
	return len(c.languages)
}
