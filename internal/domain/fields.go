package domain

import (
	"fmt"
	"math"
	"strings"
)

// The editable-field registry. Staged diffs, direct draft writes and
// pending-edit application all read and write listing fields through these
// accessors, so a field behaves identically on every path. Fields absent
// from the registry (status, counters, seller id) cannot be edited through
// a patch at all.

// FieldSpec is one editable scalar field on a listing.
type FieldSpec struct {
	Name string
	Get  func(l *Listing) any
	Set  func(l *Listing, v any) error
}

// GroupSpec is a nested field group. Typed sub-fields shadow the free-form
// extras bag: reads prefer the typed column, writes to a registered key go
// to the column, everything else lands in the bag.
type GroupSpec struct {
	Name     string
	Fields   map[string]FieldSpec
	Extras   func(l *Listing) map[string]any
	SetExtra func(l *Listing, key string, v any)
}

const (
	GroupBusinessDetails = "business_details"
	GroupFinancialData   = "financial_data"
)

// ListingField looks up an editable scalar by patch key.
func ListingField(name string) (FieldSpec, bool) {
	f, ok := listingFields[name]
	return f, ok
}

// ListingGroup looks up a nested field group by patch key.
func ListingGroup(name string) (GroupSpec, bool) {
	g, ok := listingGroups[name]
	return g, ok
}

// Value resolves the live value of a nested key. The boolean reports
// whether the key is set at all (typed keys always are).
func (g GroupSpec) Value(l *Listing, key string) (any, bool) {
	if f, ok := g.Fields[key]; ok {
		return f.Get(l), true
	}
	extras := g.Extras(l)
	if extras == nil {
		return nil, false
	}
	v, ok := extras[key]
	return v, ok
}

// Apply writes a nested key onto the listing.
func (g GroupSpec) Apply(l *Listing, key string, v any) error {
	if f, ok := g.Fields[key]; ok {
		return f.Set(l, v)
	}
	g.SetExtra(l, key, v)
	return nil
}

var listingFields = map[string]FieldSpec{
	"title": {
		Name: "title",
		Get:  func(l *Listing) any { return l.Title },
		Set: func(l *Listing, v any) error {
			s, err := asString(v)
			if err != nil {
				return fmt.Errorf("%w: title: %v", ErrInvalidInput, err)
			}
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
			}
			l.Title = strings.TrimSpace(s)
			return nil
		},
	},
	"description": {
		Name: "description",
		Get:  func(l *Listing) any { return l.Description },
		Set: func(l *Listing, v any) error {
			s, err := asString(v)
			if err != nil {
				return fmt.Errorf("%w: description: %v", ErrInvalidInput, err)
			}
			l.Description = strings.TrimSpace(s)
			return nil
		},
	},
	"practice_type": {
		Name: "practice_type",
		Get:  func(l *Listing) any { return l.PracticeType },
		Set: func(l *Listing, v any) error {
			s, err := asString(v)
			if err != nil {
				return fmt.Errorf("%w: practice_type: %v", ErrInvalidInput, err)
			}
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%w: practice_type cannot be empty", ErrInvalidInput)
			}
			l.PracticeType = strings.TrimSpace(s)
			return nil
		},
	},
	"location": {
		Name: "location",
		Get:  func(l *Listing) any { return l.Location },
		Set: func(l *Listing, v any) error {
			s, err := asString(v)
			if err != nil {
				return fmt.Errorf("%w: location: %v", ErrInvalidInput, err)
			}
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%w: location cannot be empty", ErrInvalidInput)
			}
			l.Location = strings.TrimSpace(s)
			return nil
		},
	},
	"postcode": {
		Name: "postcode",
		Get:  func(l *Listing) any { return l.Postcode },
		Set: func(l *Listing, v any) error {
			s, err := asString(v)
			if err != nil {
				return fmt.Errorf("%w: postcode: %v", ErrInvalidInput, err)
			}
			l.Postcode = strings.TrimSpace(s)
			return nil
		},
	},
	"asking_price": {
		Name: "asking_price",
		Get:  func(l *Listing) any { return l.AskingPrice },
		Set: func(l *Listing, v any) error {
			n, err := asInt64(v)
			if err != nil {
				return fmt.Errorf("%w: asking_price: %v", ErrInvalidInput, err)
			}
			if n <= 0 {
				return fmt.Errorf("%w: asking_price must be positive", ErrInvalidInput)
			}
			l.AskingPrice = n
			return nil
		},
	},
	"price_masked": {
		Name: "price_masked",
		Get:  func(l *Listing) any { return l.PriceMasked },
		Set: func(l *Listing, v any) error {
			b, err := asBool(v)
			if err != nil {
				return fmt.Errorf("%w: price_masked: %v", ErrInvalidInput, err)
			}
			l.PriceMasked = b
			return nil
		},
	},
}

var listingGroups = map[string]GroupSpec{
	GroupBusinessDetails: {
		Name: GroupBusinessDetails,
		Fields: map[string]FieldSpec{
			"patient_list_size": intField("patient_list_size",
				func(l *Listing) *int64 { return &l.PatientListSize }),
			"staff_count": intField("staff_count",
				func(l *Listing) *int64 { return &l.StaffCount }),
			"years_established": intField("years_established",
				func(l *Listing) *int64 { return &l.YearsEstablished }),
			"premises_type": {
				Name: "premises_type",
				Get:  func(l *Listing) any { return l.PremisesType },
				Set: func(l *Listing, v any) error {
					s, err := asString(v)
					if err != nil {
						return fmt.Errorf("%w: premises_type: %v", ErrInvalidInput, err)
					}
					l.PremisesType = strings.TrimSpace(s)
					return nil
				},
			},
			"cqc_registered": boolField("cqc_registered",
				func(l *Listing) *bool { return &l.CQCRegistered }),
			"nhs_contract": boolField("nhs_contract",
				func(l *Listing) *bool { return &l.NHSContract }),
		},
		Extras: func(l *Listing) map[string]any { return l.BusinessExtras },
		SetExtra: func(l *Listing, key string, v any) {
			if l.BusinessExtras == nil {
				l.BusinessExtras = map[string]any{}
			}
			l.BusinessExtras[key] = v
		},
	},
	GroupFinancialData: {
		Name: GroupFinancialData,
		Fields: map[string]FieldSpec{
			"annual_revenue": intField("annual_revenue",
				func(l *Listing) *int64 { return &l.AnnualRevenue }),
			"annual_profit": intField("annual_profit",
				func(l *Listing) *int64 { return &l.AnnualProfit }),
		},
		Extras: func(l *Listing) map[string]any { return l.FinancialExtras },
		SetExtra: func(l *Listing, key string, v any) {
			if l.FinancialExtras == nil {
				l.FinancialExtras = map[string]any{}
			}
			l.FinancialExtras[key] = v
		},
	},
}

func intField(name string, ptr func(l *Listing) *int64) FieldSpec {
	return FieldSpec{
		Name: name,
		Get:  func(l *Listing) any { return *ptr(l) },
		Set: func(l *Listing, v any) error {
			n, err := asInt64(v)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidInput, name, err)
			}
			if n < 0 {
				return fmt.Errorf("%w: %s cannot be negative", ErrInvalidInput, name)
			}
			*ptr(l) = n
			return nil
		},
	}
}

func boolField(name string, ptr func(l *Listing) *bool) FieldSpec {
	return FieldSpec{
		Name: name,
		Get:  func(l *Listing) any { return *ptr(l) },
		Set: func(l *Listing, v any) error {
			b, err := asBool(v)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidInput, name, err)
			}
			*ptr(l) = b
			return nil
		},
	}
}

func asString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

// asInt64 accepts the numeric shapes JSON decoding produces. Fractional
// values are rejected rather than rounded; these fields are whole pounds
// and whole counts.
func asInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("expected whole number, got %v", n)
		}
		return int64(n), nil
	case float32:
		f := float64(n)
		if f != math.Trunc(f) {
			return 0, fmt.Errorf("expected whole number, got %v", f)
		}
		return int64(f), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}

func asBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
	return b, nil
}
