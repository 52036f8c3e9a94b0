package schedule

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v2"
)

// Document is the on-disk shape of a weekly schedule.
type Document struct {
	Schedule Body `yaml:"schedule"`
}

type Body struct {
	Devices []string `yaml:"devices"`
	Days    Days     `yaml:"days"`
}

// Days has one key per weekday so unknown names fail strict decoding.
type Days struct {
	Monday    []SlotDocument `yaml:"monday,omitempty"`
	Tuesday   []SlotDocument `yaml:"tuesday,omitempty"`
	Wednesday []SlotDocument `yaml:"wednesday,omitempty"`
	Thursday  []SlotDocument `yaml:"thursday,omitempty"`
	Friday    []SlotDocument `yaml:"friday,omitempty"`
	Saturday  []SlotDocument `yaml:"saturday,omitempty"`
	Sunday    []SlotDocument `yaml:"sunday,omitempty"`
}

type SlotDocument struct {
	Start    string  `yaml:"start"`
	End      string  `yaml:"end"`
	Setpoint float64 `yaml:"setpoint"`
}

func (d *Days) field(day Weekday) *[]SlotDocument {
	switch day {
	case Monday:
		return &d.Monday
	case Tuesday:
		return &d.Tuesday
	case Wednesday:
		return &d.Wednesday
	case Thursday:
		return &d.Thursday
	case Friday:
		return &d.Friday
	case Saturday:
		return &d.Saturday
	case Sunday:
		return &d.Sunday
	}
	return nil
}

// Get returns the slots listed for day.
func (d *Days) Get(day Weekday) []SlotDocument {
	if f := d.field(day); f != nil {
		return *f
	}
	return nil
}

// NewDocument converts a week, complete or not, to its document form.
func NewDocument(w *Week) Document {
	doc := Document{Schedule: Body{Devices: w.TargetDevices()}}
	for _, day := range Weekdays {
		ds := w.Day(day)
		if ds == nil {
			continue
		}
		slots := make([]SlotDocument, 0, ds.Len())
		for _, s := range ds.Slots() {
			slots = append(slots, SlotDocument{Start: s.Start.String(), End: s.End.String(), Setpoint: s.Setpoint})
		}
		*doc.Schedule.Days.field(day) = slots
	}
	return doc
}

// Week converts doc to core types. Slot order in the document does not
// matter; ranges and overlaps are checked per day. Setpoints and coverage
// are left to Validate.
func (doc Document) Week(limits Limits) (*Week, error) {
	w := NewWeek(limits, doc.Schedule.Devices...)
	for _, day := range Weekdays {
		entries := doc.Schedule.Days.Get(day)
		if len(entries) == 0 {
			continue
		}
		ds := &DaySchedule{}
		for i, e := range entries {
			slot, err := e.slot()
			if err == nil {
				err = ds.AddSlot(slot)
			}
			if err != nil {
				return nil, &ParseError{Subject: day.String(), Index: i, Err: err}
			}
		}
		w.days[day] = ds
	}
	return w, nil
}

func (e SlotDocument) slot() (TimeSlot, error) {
	start, err := ParseTimeOfDay(e.Start)
	if err != nil {
		return TimeSlot{}, err
	}
	end, err := ParseTimeOfDay(e.End)
	if err != nil {
		return TimeSlot{}, err
	}
	return NewTimeSlot(start, end, e.Setpoint)
}

// Encode writes doc as YAML.
func Encode(w io.Writer, doc Document) error {
	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding schedule: %w", err)
	}
	_, err = w.Write(out)
	return err
}

// Decode reads a single YAML document, rejecting unknown keys.
func Decode(data []byte) (Document, error) {
	var doc Document
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return Document{}, &ParseError{Subject: "document", Index: -1, Err: err}
	}
	return doc, nil
}

// DecodeAll reads every document of a "---" separated stream. Empty
// documents are skipped.
func DecodeAll(r io.Reader) ([]Document, error) {
	dec := yaml.NewDecoder(r)
	dec.SetStrict(true)

	var docs []Document
	for n := 0; ; n++ {
		var doc Document
		err := dec.Decode(&doc)
		if err == io.EOF {
			return docs, nil
		}
		if err != nil {
			return nil, &ParseError{Subject: fmt.Sprintf("document %d", n+1), Index: -1, Err: err}
		}
		if doc.empty() {
			continue
		}
		docs = append(docs, doc)
	}
}

func (doc Document) empty() bool {
	if len(doc.Schedule.Devices) > 0 {
		return false
	}
	for _, day := range Weekdays {
		if len(doc.Schedule.Days.Get(day)) > 0 {
			return false
		}
	}
	return true
}

// Marshal is Encode into a byte slice.
func Marshal(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
