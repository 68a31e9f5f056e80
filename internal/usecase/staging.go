package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/domain"
)

// Staged-edit diffing. Proposed values are compared against the live
// listing through a normalized string projection, so "1.0" and 1,
// "  Leeds " and "Leeds", and equivalent timestamp spellings never
// register as changes. Only fields that actually differ enter the delta.

// normalizeValue renders a value in canonical form for comparison.
// It is a projection for equality checks, not a display format.
func normalizeValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return normalizeString(t)
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.FormatInt(int64(t), 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		if f, err := t.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return t.String()
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// normalizeString trims whitespace and canonicalizes timestamp spellings
// so a date arriving as "2025-06-01" compares equal to the stored
// "2025-06-01T00:00:00Z".
func normalizeString(s string) string {
	s = strings.TrimSpace(s)
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC().Format(time.RFC3339)
	}
	if ts, err := time.Parse("2006-01-02", s); err == nil {
		return ts.UTC().Format(time.RFC3339)
	}
	return s
}

// diffListingFields computes the minimal delta between proposed fields and
// the live listing. Group values must be objects; their nested keys are
// compared one by one and a group enters the delta only with the keys that
// differ. Unknown top-level keys are skipped. Differing values are
// validated through the field registry before they are accepted.
func diffListingFields(listing *domain.Listing, proposed map[string]any) (map[string]any, error) {
	delta := make(map[string]any)
	scratch := listing.Clone()

	for key, val := range proposed {
		if group, ok := domain.ListingGroup(key); ok {
			if val == nil {
				continue
			}
			nested, ok := val.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: %s must be an object", domain.ErrInvalidInput, key)
			}
			changed := make(map[string]any)
			for k, v := range nested {
				current, _ := group.Value(listing, k)
				if normalizeValue(current) == normalizeValue(v) {
					continue
				}
				if err := group.Apply(scratch, k, v); err != nil {
					return nil, err
				}
				changed[k] = v
			}
			if len(changed) > 0 {
				delta[key] = changed
			}
			continue
		}

		field, ok := domain.ListingField(key)
		if !ok {
			continue
		}
		if normalizeValue(field.Get(listing)) == normalizeValue(val) {
			continue
		}
		if err := field.Set(scratch, val); err != nil {
			return nil, err
		}
		delta[key] = val
	}
	return delta, nil
}

// applyListingChanges writes a stored delta onto the listing through the
// same registry the diff used. Unknown keys are skipped, matching the
// diff side.
func applyListingChanges(listing *domain.Listing, changes map[string]any) error {
	for key, val := range changes {
		if group, ok := domain.ListingGroup(key); ok {
			nested, ok := val.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: %s must be an object", domain.ErrInvalidInput, key)
			}
			for k, v := range nested {
				if err := group.Apply(listing, k, v); err != nil {
					return err
				}
			}
			continue
		}
		if field, ok := domain.ListingField(key); ok {
			if err := field.Set(listing, val); err != nil {
				return err
			}
		}
	}
	return nil
}

// stageListingChanges diffs and, when something differs, upserts the
// listing's single pending edit inside the caller's transaction. A nil
// edit with a nil error means nothing differed and nothing was written.
func stageListingChanges(ctx context.Context, r domain.Repositories, listing *domain.Listing, proposed map[string]any, reason string) (*domain.PendingEdit, error) {
	delta, err := diffListingFields(listing, proposed)
	if err != nil {
		return nil, err
	}
	if len(delta) == 0 {
		return nil, nil
	}

	existing, err := r.PendingEdits().FindPendingByListing(ctx, listing.ID)
	switch {
	case err == nil:
		existing.Replace(delta, reason)
		if err := r.PendingEdits().Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("%w: failed to replace pending edit: %v", domain.ErrRepository, err)
		}
		return existing, nil
	case errors.Is(err, domain.ErrNotFound):
		edit, err := domain.NewPendingEdit(listing.ID, listing.SellerID, delta, reason)
		if err != nil {
			return nil, err
		}
		if err := r.PendingEdits().Create(ctx, edit); err != nil {
			return nil, fmt.Errorf("%w: failed to create pending edit: %v", domain.ErrRepository, err)
		}
		return edit, nil
	default:
		return nil, fmt.Errorf("%w: failed to load pending edit: %v", domain.ErrRepository, err)
	}
}

// pendingEditRows expands a stored delta into review rows, resolving the
// current value from the live listing at display time.
func pendingEditRows(listing *domain.Listing, edit *domain.PendingEdit) []domain.FieldChange {
	rows := make([]domain.FieldChange, 0, len(edit.Changes))

	for _, key := range sortedKeys(edit.Changes) {
		val := edit.Changes[key]
		if group, ok := domain.ListingGroup(key); ok {
			nested, ok := val.(map[string]any)
			if !ok {
				continue
			}
			for _, k := range sortedKeys(nested) {
				current, _ := group.Value(listing, k)
				rows = append(rows, domain.FieldChange{
					Field:        key + "." + k,
					Label:        fieldLabel(key) + ": " + fieldLabel(k),
					CurrentValue: current,
					NewValue:     nested[k],
				})
			}
			continue
		}
		field, ok := domain.ListingField(key)
		if !ok {
			continue
		}
		rows = append(rows, domain.FieldChange{
			Field:        key,
			Label:        fieldLabel(key),
			CurrentValue: field.Get(listing),
			NewValue:     val,
		})
	}
	return rows
}

var labelAcronyms = map[string]string{
	"cqc": "CQC",
	"nhs": "NHS",
	"id":  "ID",
	"url": "URL",
}

// fieldLabel turns a snake_case field name into a display label.
func fieldLabel(name string) string {
	parts := strings.Split(name, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		if a, ok := labelAcronyms[p]; ok {
			parts[i] = a
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
