package edit

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// ErrInvalidDocument is matched by every error returned from Parse and Load.
var ErrInvalidDocument = errors.New("invalid edit document")

// InvalidDocumentError describes why an edit document was rejected.
type InvalidDocumentError struct {
	Reason string
}

func (e *InvalidDocumentError) Error() string {
	return "invalid edit document: " + e.Reason
}

func (e *InvalidDocumentError) Is(target error) bool {
	return target == ErrInvalidDocument
}

func invalidf(format string, args ...interface{}) error {
	return &InvalidDocumentError{Reason: fmt.Sprintf(format, args...)}
}

// Clip is a single edit marker in frame units.
type Clip struct {
	Start float64
	End   float64
}

// Document is a validated edit-decision document.
type Document struct {
	Clips          []Clip
	FrameRate      float64
	DurationFrames float64
	// gjson path the source metadata was found under
	MetadataPath string
}

// TotalDurationSec is the source duration in seconds.
func (d *Document) TotalDurationSec() float64 {
	return d.DurationFrames / d.FrameRate
}

// Producers nest the source metadata differently under "video". The
// documented layout is tried first, then any video.<key>.video object.
const documentedMetadataPath = "video.media.video"

// Load reads and parses the edit document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read edit document: %w", err)
	}
	return Parse(data)
}

// Parse validates raw JSON and extracts clips and source metadata.
func Parse(data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, invalidf("not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, invalidf("top-level value must be an object")
	}

	clips, err := parseClips(root.Get("clips"))
	if err != nil {
		return nil, err
	}

	doc := &Document{Clips: clips}

	meta, path, ok := findMetadata(root)
	if !ok {
		return nil, invalidf(
			"source metadata not found (expected %s.{duration,timecode.rate.timebase})",
			documentedMetadataPath,
		)
	}
	doc.MetadataPath = path

	timebase := meta.Get("timecode.rate.timebase")
	if timebase.Type != gjson.Number {
		return nil, invalidf("frame rate (%s.timecode.rate.timebase) missing or not a number", path)
	}
	if timebase.Float() <= 0 {
		return nil, invalidf("frame rate must be positive, got %v", timebase.Float())
	}
	doc.FrameRate = timebase.Float()

	duration := meta.Get("duration")
	if duration.Type != gjson.Number {
		return nil, invalidf("duration (%s.duration) missing or not a number", path)
	}
	if duration.Float() <= 0 {
		return nil, invalidf("duration must be positive, got %v", duration.Float())
	}
	doc.DurationFrames = duration.Float()

	return doc, nil
}

func findMetadata(root gjson.Result) (gjson.Result, string, bool) {
	if meta := root.Get(documentedMetadataPath); meta.IsObject() {
		return meta, documentedMetadataPath, true
	}

	var (
		found gjson.Result
		path  string
	)
	root.Get("video").ForEach(func(key, value gjson.Result) bool {
		inner := value.Get("video")
		if !inner.IsObject() || !inner.Get("duration").Exists() {
			return true
		}
		found = inner
		path = "video." + key.String() + ".video"
		return false
	})
	return found, path, path != ""
}

func parseClips(v gjson.Result) ([]Clip, error) {
	if !v.Exists() {
		return nil, invalidf("missing \"clips\"")
	}
	if !v.IsArray() {
		return nil, invalidf("\"clips\" must be a list")
	}

	var raw []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(v.Raw), &raw); err != nil {
		return nil, invalidf("\"clips\" entries must be objects: %v", err)
	}

	clips := make([]Clip, 0, len(raw))
	for i, entry := range raw {
		start, err := frameField(entry, "start")
		if err != nil {
			return nil, invalidf("clip %d: %v", i, err)
		}
		end, err := frameField(entry, "end")
		if err != nil {
			return nil, invalidf("clip %d: %v", i, err)
		}
		if start < 0 || end < 0 {
			return nil, invalidf("clip %d: negative start/end frame (%v, %v)", i, start, end)
		}
		clips = append(clips, Clip{Start: start, End: end})
	}
	return clips, nil
}

func frameField(entry map[string]json.RawMessage, name string) (float64, error) {
	raw, ok := entry[name]
	if !ok {
		return 0, fmt.Errorf("missing %q", name)
	}
	var n float64
	if string(raw) == "null" {
		return 0, fmt.Errorf("%q must be a number, got null", name)
	}
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("%q must be a number, got %s", name, raw)
	}
	return n, nil
}
