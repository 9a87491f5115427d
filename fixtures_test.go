package formser_test

import (
	"reflect"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/tomasbasham/formser"
)

// Comparer for MyDate type.
var MyDateComparer = cmp.Comparer(func(x, y MyDate) bool {
	return time.Time(x).Equal(time.Time(y))
})

// Comparer for additional data bags, which compares keys in order.
var AdditionalDataComparer = cmp.Comparer(func(x, y *formser.AdditionalData) bool {
	if x.Len() != y.Len() {
		return false
	}
	if !reflect.DeepEqual(x.Keys(), y.Keys()) {
		return false
	}
	equal := true
	x.Range(func(key string, v interface{}) bool {
		w, _ := y.Get(key)
		equal = reflect.DeepEqual(v, w)
		return equal
	})
	return equal
})

func ptr[T any](v T) *T {
	return &v
}

type TestEnum int

const (
	One TestEnum = iota + 1
	Two
	Four
	Eight
)

func (e TestEnum) MarshalForm() (string, error) {
	switch e {
	case One:
		return "one", nil
	case Two:
		return "two", nil
	case Four:
		return "four", nil
	case Eight:
		return "eight", nil
	default:
		return "", nil
	}
}

func parseTestEnum(s string) (interface{}, error) {
	switch s {
	case "one":
		return One, nil
	case "two":
		return Two, nil
	case "four":
		return Four, nil
	case "eight":
		return Eight, nil
	default:
		return nil, nil
	}
}

// TestEntity is a model shaped like the ones produced by a client generator.
type TestEntity struct {
	ID              *uuid.UUID
	DeviceNames     []string
	Numbers         []TestEnum
	WorkDuration    *time.Duration
	Birthday        *formser.DateOnly
	StartWorkTime   *formser.TimeOnly
	EndWorkTime     *formser.TimeOnly
	CreatedDateTime *time.Time
	OfficeLocation  *TestEnum
	AdditionalData  *formser.AdditionalData
}

func createTestEntity(*formser.Node) (formser.Parsable, error) {
	return &TestEntity{}, nil
}

func (e *TestEntity) GetAdditionalData() *formser.AdditionalData {
	return e.AdditionalData
}

func (e *TestEntity) SetAdditionalData(a *formser.AdditionalData) {
	e.AdditionalData = a
}

func (e *TestEntity) Serialize(w *formser.Writer) error {
	if err := w.WriteUUIDValue("id", e.ID); err != nil {
		return err
	}
	if err := w.WriteCollectionOfPrimitiveValues("deviceNames", e.DeviceNames); err != nil {
		return err
	}
	numbers := make([]formser.Marshaler, 0, len(e.Numbers))
	for _, n := range e.Numbers {
		numbers = append(numbers, n)
	}
	if err := w.WriteEnumValue("numbers", numbers...); err != nil {
		return err
	}
	if err := w.WriteDurationValue("workDuration", e.WorkDuration); err != nil {
		return err
	}
	if err := w.WriteDateOnlyValue("birthDay", e.Birthday); err != nil {
		return err
	}
	if err := w.WriteTimeOnlyValue("startWorkTime", e.StartWorkTime); err != nil {
		return err
	}
	if err := w.WriteTimeOnlyValue("endWorkTime", e.EndWorkTime); err != nil {
		return err
	}
	if err := w.WriteTimeValue("createdDateTime", e.CreatedDateTime); err != nil {
		return err
	}
	if e.OfficeLocation != nil {
		if err := w.WriteEnumValue("officeLocation", *e.OfficeLocation); err != nil {
			return err
		}
	}
	return w.WriteAdditionalData(e.AdditionalData)
}

func (e *TestEntity) FieldDeserializers() map[string]func(*formser.Node) error {
	return map[string]func(*formser.Node) error{
		"id": func(n *formser.Node) error {
			v, err := n.GetUUIDValue()
			e.ID = v
			return err
		},
		"deviceNames": func(n *formser.Node) error {
			vals, err := n.GetCollectionOfPrimitiveValues(formser.KindString)
			if err != nil {
				return err
			}
			for _, v := range vals {
				if v != nil {
					e.DeviceNames = append(e.DeviceNames, v.(string))
				}
			}
			return nil
		},
		"numbers": func(n *formser.Node) error {
			vals, err := n.GetCollectionOfEnumValues(parseTestEnum)
			if err != nil {
				return err
			}
			for _, v := range vals {
				e.Numbers = append(e.Numbers, v.(TestEnum))
			}
			return nil
		},
		"workDuration": func(n *formser.Node) error {
			v, err := n.GetDurationValue()
			e.WorkDuration = v
			return err
		},
		"birthDay": func(n *formser.Node) error {
			v, err := n.GetDateOnlyValue()
			e.Birthday = v
			return err
		},
		"startWorkTime": func(n *formser.Node) error {
			v, err := n.GetTimeOnlyValue()
			e.StartWorkTime = v
			return err
		},
		"endWorkTime": func(n *formser.Node) error {
			v, err := n.GetTimeOnlyValue()
			e.EndWorkTime = v
			return err
		},
		"createdDateTime": func(n *formser.Node) error {
			v, err := n.GetTimeValue()
			e.CreatedDateTime = v
			return err
		},
		"officeLocation": func(n *formser.Node) error {
			v, err := n.GetEnumValue(parseTestEnum)
			if err != nil || v == nil {
				return err
			}
			loc := v.(TestEnum)
			e.OfficeLocation = &loc
			return nil
		},
	}
}

// Manager nests a TestEntity, which is written as a single value.
type Manager struct {
	Name   *string
	Report *TestEntity
}

func createManager(*formser.Node) (formser.Parsable, error) {
	return &Manager{}, nil
}

func (m *Manager) Serialize(w *formser.Writer) error {
	if err := w.WriteStringValue("name", m.Name); err != nil {
		return err
	}
	return w.WriteObjectValue("report", m.Report)
}

func (m *Manager) FieldDeserializers() map[string]func(*formser.Node) error {
	return map[string]func(*formser.Node) error{
		"name": func(n *formser.Node) error {
			v, err := n.GetStringValue()
			m.Name = v
			return err
		},
		"report": func(n *formser.Node) error {
			v, err := n.GetObjectValue(createTestEntity)
			if err != nil || v == nil {
				return err
			}
			m.Report = v.(*TestEntity)
			return nil
		},
	}
}

type Person struct {
	Name     string   `form:"name"`
	Age      int      `form:"age,omitempty"`
	Pronouns []string `form:"pronouns"`
	Address  Address  `form:"address"`
	Born     MyDate   `form:"born"`
	Private  string   `form:"-"`
}

type Address struct {
	Street string `form:"street"`
	City   string `form:"city"`
	Zip    string `form:"zip,omitempty"`
}

type MyDate time.Time

func (d MyDate) MarshalForm() (string, error) {
	return time.Time(d).Format("2006.01.02"), nil
}

func (d *MyDate) UnmarshalForm(b string) error {
	t, err := time.Parse("2006.01.02", b)
	if err != nil {
		return err
	}
	*d = MyDate(t)
	return nil
}
