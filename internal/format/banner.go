package format

import (
	"fmt"
	"io"
)

var bannerLines = []string{
	"%s - generates good readable passwords",
	"Copyright (C) 2019 Maik Baumann",
	"",
	"This program is free software: you can redistribute it and/or modify",
	"it under the terms of the GNU General Public License as published by",
	"the Free Software Foundation, either version 3 of the License, or",
	"(at your option) any later version.",
	"",
	"This program is distributed in the hope that it will be useful,",
	"but WITHOUT ANY WARRANTY; without even the implied warranty of",
	"MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the",
	"GNU General Public License for more details.",
	"",
	"You should have received a copy of the GNU General Public License",
	"along with this program.  If not, see <https://www.gnu.org/licenses/>.",
	"",
}

// Banner writes the license notice for the named program.
func Banner(w io.Writer, name string) error {
	for i, line := range bannerLines {
		if i == 0 {
			line = fmt.Sprintf(line, name)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write banner: %w", err)
		}
	}
	return nil
}
