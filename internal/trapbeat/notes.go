package trapbeat

import (
	"fmt"
	"strconv"
	"strings"
)

var pitchClassNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var letterOffsets = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// ParseNoteName converts a scientific pitch name such as "F#3" or "Bb-1" to a MIDI number.
// C4 is 60. Names outside 0..127 are rejected rather than clamped.
func ParseNoteName(name string) (int, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return 0, fmt.Errorf("note name too short: %q", name)
	}

	semitone, ok := letterOffsets[strings.ToUpper(name[:1])[0]]
	if !ok {
		return 0, fmt.Errorf("invalid note letter in %q", name)
	}

	idx := 1
	switch name[idx] {
	case '#':
		semitone++
		idx++
	case 'b':
		semitone--
		idx++
	}

	if idx >= len(name) {
		return 0, fmt.Errorf("missing octave in note name %q", name)
	}
	octave, err := strconv.Atoi(name[idx:])
	if err != nil {
		return 0, fmt.Errorf("invalid octave in note name %q: %w", name, err)
	}

	midi := (octave+1)*12 + semitone
	if midi < 0 || midi > midiMax {
		return 0, fmt.Errorf("note %q is outside the MIDI range", name)
	}
	return midi, nil
}

// NoteName renders a MIDI number with sharps, e.g. 54 -> "F#3".
func NoteName(midi int) string {
	return fmt.Sprintf("%s%d", pitchClassNames[posMod(midi, 12)], floorDiv12(midi)-1)
}

func floorDiv12(n int) int {
	if n < 0 {
		return -((-n + 11) / 12)
	}
	return n / 12
}
