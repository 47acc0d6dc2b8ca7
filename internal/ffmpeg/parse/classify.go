// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaEngine - FFmpeg 媒体转换引擎

package parse

import (
	"fmt"
	"strings"
)

// Classify applies the pattern catalog to a single line of output and
// returns every partial update the line implies. It is a pure function:
// same line and same context give the same result.
//
// knowDuration tells the classifier that the authoritative total duration
// is already set, so duration-looking text in later output (progress lines,
// output banners) is not classified as a duration announcement again.
//
// Classify never lets an internal parse error escape as a wrong value: any
// panic inside extraction is recovered here and returned as an error, which
// the supervisor treats as a run-aborting fault.
func Classify(line string, knowDuration bool) (updates []Update, err error) {
	defer func() {
		if r := recover(); r != nil {
			updates = nil
			err = fmt.Errorf("classify line %q: %v", line, r)
		}
	}()

	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return nil, nil
	}

	if !knowDuration {
		if u, ok := durationFrom(line); ok {
			updates = append(updates, u)
		}
	}
	if u, ok := videoStreamFrom(line); ok {
		updates = append(updates, u)
	}
	if u, ok := audioStreamFrom(line); ok {
		updates = append(updates, u)
	}
	// Stream and progress matches are not mutually exclusive: a line may
	// carry both and then yields both updates.
	if u, ok := progressFrom(line); ok {
		updates = append(updates, u)
	}
	if u, ok := errorMarkerFrom(line); ok {
		updates = append(updates, u)
	}
	return updates, nil
}
