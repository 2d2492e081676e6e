package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Frame constructors for the device -> client direction. The client never
// builds these; the simulator does, and tests use them to produce frames
// exactly as the firmware formats them.

// MaxSignalLevel is the highest signal level the tuner reports (0-15 scale, 15 dots on the gauge)
const MaxSignalLevel = 15

// BuildFrame joins a tag and its fields with the EOT separator.
// Fields containing the separator are rejected since they cannot be decoded.
func BuildFrame(tag string, fields ...string) (string, error) {
	if tag == "" {
		return "", fmt.Errorf("empty tag")
	}
	if strings.Contains(tag, FieldSeparator) {
		return "", fmt.Errorf("tag %q contains field separator", tag)
	}
	for i, f := range fields {
		if strings.Contains(f, FieldSeparator) {
			return "", fmt.Errorf("field %d contains field separator", i)
		}
	}

	parts := make([]string, 0, len(fields)+1)
	parts = append(parts, tag)
	parts = append(parts, fields...)
	return strings.Join(parts, FieldSeparator), nil
}

// mustBuild is for constructors whose fields are produced by strconv and can never hold 0x04
func mustBuild(tag string, fields ...string) string {
	frame, err := BuildFrame(tag, fields...)
	if err != nil {
		panic(err)
	}
	return frame
}

// BuildHead builds HEAD<EOT>title
func BuildHead(title string) (string, error) {
	return BuildFrame(TagHead, title)
}

// BuildStatus builds STATUS<EOT>value<EOT>stereo<EOT>level.
// The value is formatted like C's %f (six decimals), which is what the firmware sends.
func BuildStatus(frequencyMHz float64, stereo bool, level int) string {
	st := 0
	if stereo {
		st = 1
	}
	if level < 0 {
		level = 0
	}
	if level > MaxSignalLevel {
		level = MaxSignalLevel
	}
	return mustBuild(TagStatus,
		strconv.FormatFloat(frequencyMHz, 'f', 6, 64),
		strconv.Itoa(st),
		strconv.Itoa(level),
	)
}

// BuildPreset builds the one-field PRESET<EOT>frequency form the firmware
// echoes after a preset-request.
func BuildPreset(frequencyText string) (string, error) {
	return BuildFrame(TagPreset, frequencyText)
}

// BuildPresetWithFlag builds PRESET<EOT>frequency<EOT>flag
func BuildPresetWithFlag(frequencyText string, isDefault bool) (string, error) {
	return BuildFrame(TagPreset, frequencyText, flagText(isDefault))
}

// BuildScaledPreset builds PRESET*10<EOT>frequency_x10<EOT>flag
func BuildScaledPreset(frequencyX10 int, isDefault bool) string {
	return mustBuild(TagScaledPreset, strconv.Itoa(frequencyX10), flagText(isDefault))
}

// BuildColor builds COLOR<EOT>scheme
func BuildColor(scheme int) string {
	return mustBuild(TagColor, strconv.Itoa(scheme))
}

func flagText(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
