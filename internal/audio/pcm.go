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

package audio

import (
	"encoding/binary"
	"fmt"
	"math"
)

// PCM16ToFloat32 converts little-endian 16-bit PCM bytes to float32 samples
// in the range [-1, 1].
func PCM16ToFloat32(data []byte) ([]float32, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("odd PCM16 payload length: %d", len(data))
	}

	samples := make([]float32, len(data)/2)
	for i := range samples {
		raw := int16(binary.LittleEndian.Uint16(data[i*2:])) //nolint:gosec // G115: 16-bit reinterpretation is intended
		samples[i] = float32(raw) / 32768.0
	}
	return samples, nil
}

// Float32ToPCM16 converts float32 samples to little-endian 16-bit PCM bytes,
// clamping out-of-range values.
func Float32ToPCM16(samples []float32) []byte {
	data := make([]byte, len(samples)*2)
	for i, sample := range samples {
		scaled := sample * 32767.0
		if scaled > 32767 {
			scaled = 32767
		} else if scaled < -32768 {
			scaled = -32768
		}
		binary.LittleEndian.PutUint16(data[i*2:], uint16(int16(math.Round(float64(scaled))))) //nolint:gosec // G115: clamped above
	}
	return data
}
