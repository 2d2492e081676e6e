package capture

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/muurk/fmremote/internal/protocol"
)

// Count is one label and how often it occurred
type Count struct {
	Label string
	N     int
}

// Summary aggregates a capture file
type Summary struct {
	Records   int
	Malformed int
	Unknown   int // inbound frames with a tag the client does not handle
	Sessions  int
	First     time.Time
	Last      time.Time
	Inbound   []Count // by tag, most frequent first
	Outbound  []Count // by command id, most frequent first
}

// Duration returns the time between the first and last record
func (s Summary) Duration() time.Duration {
	if s.First.IsZero() || s.Last.IsZero() {
		return 0
	}
	return s.Last.Sub(s.First)
}

// Analyze reads JSONL capture records from r. Lines that do not parse are
// counted as malformed and skipped.
func Analyze(r io.Reader) (Summary, error) {
	var s Summary
	inbound := make(map[string]int)
	outbound := make(map[string]int)
	sessions := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			s.Malformed++
			continue
		}

		switch rec.Direction {
		case DirectionInbound:
			inbound[rec.Label]++
			if !protocol.IsKnownTag(rec.Label) {
				s.Unknown++
			}
		case DirectionOutbound:
			outbound[rec.Label]++
		default:
			s.Malformed++
			continue
		}
		s.Records++

		if s.First.IsZero() || rec.Timestamp.Before(s.First) {
			s.First = rec.Timestamp
		}
		if rec.Timestamp.After(s.Last) {
			s.Last = rec.Timestamp
		}
		if rec.SessionID != "" {
			sessions[rec.SessionID] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return s, fmt.Errorf("failed to read capture: %w", err)
	}

	s.Sessions = len(sessions)
	s.Inbound = sortCounts(inbound)
	s.Outbound = sortCounts(outbound)
	return s, nil
}

func sortCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for label, n := range m {
		out = append(out, Count{Label: label, N: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].N != out[j].N {
			return out[i].N > out[j].N
		}
		return out[i].Label < out[j].Label
	})
	return out
}
