/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package attrtype

import (
	"fmt"
	"math"
	"time"

	"github.com/go-openapi/strfmt"
)

func buildDate(d *Descriptor) error {
	switch d.Settings.Storage {
	case "":
		d.Settings.Storage = StorageMilliseconds
	case StorageMilliseconds, StorageSeconds:
	case StorageISO:
		d.WireTags = []string{"S"}
	default:
		return fmt.Errorf("unknown date storage %q", d.Settings.Storage)
	}
	storage := d.Settings.Storage

	d.Match = func(v any) Form {
		switch t := v.(type) {
		case time.Time, strfmt.DateTime:
			return FormMain
		case string:
			if storage == StorageISO {
				if _, err := strfmt.ParseDateTime(t); err == nil {
					return FormUnderlying
				}
			}
			return FormNone
		}
		if storage != StorageISO && IsNumber(v) {
			return FormUnderlying
		}
		return FormNone
	}

	d.Converter = &Converter{
		ToWire: func(v any) (any, error) {
			t, ok := asTime(v)
			if !ok {
				return nil, fmt.Errorf("cannot convert %T to a date", v)
			}
			switch storage {
			case StorageSeconds:
				return t.Unix(), nil
			case StorageISO:
				return strfmt.DateTime(t.UTC()).String(), nil
			}
			return t.UnixMilli(), nil
		},
		FromWire: func(v any) (any, error) {
			if s, ok := v.(string); ok {
				dt, err := strfmt.ParseDateTime(s)
				if err != nil {
					return nil, fmt.Errorf("invalid stored date %q: %w", s, err)
				}
				return time.Time(dt).UTC(), nil
			}
			f, ok := ToFloat(v)
			if !ok {
				return nil, fmt.Errorf("cannot convert %T to a date", v)
			}
			if storage == StorageSeconds {
				sec, frac := math.Modf(f)
				return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC(), nil
			}
			return time.UnixMilli(int64(f)).UTC(), nil
		},
	}
	return nil
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case strfmt.DateTime:
		return time.Time(t), true
	}
	return time.Time{}, false
}
