package protocol

import (
	"reflect"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantTag    string
		wantFields []string
	}{
		{
			name:       "preset with flag",
			raw:        "PRESET\x0487.5\x041",
			wantTag:    "PRESET",
			wantFields: []string{"87.5", "1"},
		},
		{
			name:       "status",
			raw:        "STATUS\x0487.500000\x041\x049",
			wantTag:    "STATUS",
			wantFields: []string{"87.500000", "1", "9"},
		},
		{
			name:       "no separator",
			raw:        "garbage",
			wantTag:    "garbage",
			wantFields: []string{},
		},
		{
			name:       "empty",
			raw:        "",
			wantTag:    "",
			wantFields: []string{},
		},
		{
			name:       "trailing separator yields empty field",
			raw:        "HEAD\x04",
			wantTag:    "HEAD",
			wantFields: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Split(tt.raw)
			if r.Tag != tt.wantTag {
				t.Errorf("tag = %q, want %q", r.Tag, tt.wantTag)
			}
			if !reflect.DeepEqual(r.Fields, tt.wantFields) {
				t.Errorf("fields = %q, want %q", r.Fields, tt.wantFields)
			}
		})
	}
}

func TestSplit_IsPure(t *testing.T) {
	raw := "PRESET\x0487.5\x041"
	a := Split(raw)
	b := Split(raw)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Split() not deterministic: %v vs %v", a, b)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Message
	}{
		{
			name: "head",
			raw:  "HEAD\x04ESP32 RADIO",
			want: &HeadMessage{Title: "ESP32 RADIO"},
		},
		{
			name: "status",
			raw:  "STATUS\x0487.500000\x040\x0412",
			want: &StatusMessage{ValueText: "87.500000", StereoText: "0", SignalText: "12"},
		},
		{
			name: "status with missing fields",
			raw:  "STATUS\x0487.5",
			want: &StatusMessage{ValueText: "87.5"},
		},
		{
			name: "preset two fields",
			raw:  "PRESET\x0487.5\x041",
			want: &PresetMessage{FrequencyText: "87.5", DefaultFlagText: "1"},
		},
		{
			name: "preset one field",
			raw:  "PRESET\x0490.1",
			want: &PresetMessage{FrequencyText: "90.1"},
		},
		{
			name: "scaled preset",
			raw:  "PRESET*10\x04875\x040",
			want: &ScaledPresetMessage{ScaledText: "875", DefaultFlagText: "0"},
		},
		{
			name: "color",
			raw:  "COLOR\x043",
			want: &ColorMessage{ColorText: "3"},
		},
		{
			name: "unknown tag",
			raw:  "FOO\x04bar\x04baz",
			want: &UnknownMessage{Record: Record{Tag: "FOO", Fields: []string{"bar", "baz"}}},
		},
		{
			name: "bare tag without separator is unknown",
			raw:  "STATUS",
			want: &UnknownMessage{Record: Record{Tag: "STATUS", Fields: []string{}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Decode() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDecode_TagMatchesVariant(t *testing.T) {
	for _, tag := range []string{TagHead, TagStatus, TagPreset, TagScaledPreset, TagColor} {
		msg := Decode(tag + FieldSeparator + "x")
		if msg.Tag() != tag {
			t.Errorf("Decode(%s).Tag() = %s", tag, msg.Tag())
		}
		if _, unknown := msg.(*UnknownMessage); unknown {
			t.Errorf("Decode(%s) produced UnknownMessage", tag)
		}
		if !IsKnownTag(tag) {
			t.Errorf("IsKnownTag(%s) = false", tag)
		}
	}
	if IsKnownTag("FOO") {
		t.Error("IsKnownTag(FOO) = true")
	}
}

func TestRecord_Field(t *testing.T) {
	r := Record{Tag: "X", Fields: []string{"a"}}
	if r.Field(0) != "a" {
		t.Errorf("Field(0) = %q", r.Field(0))
	}
	if r.Field(1) != "" || r.Field(-1) != "" {
		t.Error("out of range fields should be empty")
	}
}
