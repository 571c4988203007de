// Package exif extracts the camera metadata the gallery cares about (make,
// model, original capture time, GPS presence) and derives tag names from it.
package exif

import (
	"fmt"
	"io"
	"strings"
	"time"

	goexif "github.com/rwcarlsen/goexif/exif"
)

// exifTimeLayout is the fixed EXIF DateTimeOriginal format.
const exifTimeLayout = "2006:01:02 15:04:05"

// Metadata is the subset of EXIF fields used for tagging. Zero values mean
// the field was absent from the image.
type Metadata struct {
	Make             string
	Model            string
	DateTimeOriginal string
	HasGPS           bool
}

// Parse decodes EXIF metadata from r. Images without an EXIF segment yield an
// error; callers treat any parse failure as "no camera data".
func Parse(r io.Reader) (*Metadata, error) {
	x, err := goexif.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("exif: decode failed: %w", err)
	}

	meta := &Metadata{}
	if tag, err := x.Get(goexif.Make); err == nil {
		if v, err := tag.StringVal(); err == nil {
			meta.Make = strings.TrimSpace(v)
		}
	}
	if tag, err := x.Get(goexif.Model); err == nil {
		if v, err := tag.StringVal(); err == nil {
			meta.Model = strings.TrimSpace(v)
		}
	}
	if tag, err := x.Get(goexif.DateTimeOriginal); err == nil {
		if v, err := tag.StringVal(); err == nil {
			meta.DateTimeOriginal = strings.TrimSpace(v)
		}
	}
	if _, err := x.Get(goexif.GPSInfoIFDPointer); err == nil {
		meta.HasGPS = true
	}
	return meta, nil
}

// Empty reports whether no usable field was extracted.
func (m *Metadata) Empty() bool {
	return m.Make == "" && m.Model == "" && m.DateTimeOriginal == "" && !m.HasGPS
}

// DerivedTags returns the tag names asserted by this metadata:
// make:<make>, model:<model>, camera:<make model> (only when both are
// present) and a bare gps marker. Values are lowercased; absent fields
// produce no tag.
func (m *Metadata) DerivedTags() []string {
	var tags []string
	if v := strings.ToLower(m.Make); v != "" {
		tags = append(tags, "make:"+v)
	}
	if v := strings.ToLower(m.Model); v != "" {
		tags = append(tags, "model:"+v)
	}
	if m.Make != "" && m.Model != "" {
		tags = append(tags, "camera:"+strings.ToLower(m.Make+" "+m.Model))
	}
	if m.HasGPS {
		tags = append(tags, "gps")
	}
	return tags
}

// TakenAt parses DateTimeOriginal using the fixed EXIF layout. ok is false
// when the field is absent or does not parse; the caller leaves the
// picture's taken-at untouched in that case.
func (m *Metadata) TakenAt() (time.Time, bool) {
	if m.DateTimeOriginal == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(exifTimeLayout, m.DateTimeOriginal)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Fields returns the extracted values as a map for the field-level merge into
// a picture's metadata blob. Absent fields are omitted so a merge never
// clears previously stored values.
func (m *Metadata) Fields() map[string]any {
	fields := map[string]any{}
	if m.Make != "" {
		fields["make"] = m.Make
	}
	if m.Model != "" {
		fields["model"] = m.Model
	}
	if m.DateTimeOriginal != "" {
		fields["datetime_original"] = m.DateTimeOriginal
	}
	if m.HasGPS {
		fields["has_gps"] = true
	}
	return fields
}
