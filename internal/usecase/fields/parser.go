// Package fields turns a hit's tag list into a typed field map and a promotion category.
package fields

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/querygate/internal/domain/field"
	"github.com/kailas-cloud/querygate/internal/domain/search/hit"
	"github.com/kailas-cloud/querygate/internal/domain/search/result"
)

// InjectedPromotionTag marks a hit the enrichment channel placed into the results.
const InjectedPromotionTag = "INJECTEDPROMOTION"

// Parse builds the typed result for one hit using the given registry snapshot.
//
// Tags are visited in document order. A tag resolved by the registry is keyed by
// the field id and coerced to the declared type; any other tag is kept as a
// string under its own name. Repeated tags become a list in occurrence order.
func Parse(raw hit.Raw, reg *field.Registry) result.Result {
	fields := make(map[string]field.Value, len(raw.Tags))
	for _, tag := range raw.Tags {
		key, v := coerceTag(tag, reg)
		if prev, ok := fields[key]; ok {
			fields[key] = prev.Append(v)
			continue
		}
		fields[key] = v
	}
	return result.New(raw.Meta, fields, Classify(raw))
}

func coerceTag(tag hit.Tag, reg *field.Registry) (string, field.Value) {
	cfg, ok := reg.Resolve(tag.Name)
	if !ok {
		return tag.Name, field.StringValue(tag.Value)
	}
	return cfg.ID(), field.Coerce(cfg, tag.Value)
}

// Classify derives the promotion category. A named promotion wins over an
// injected one.
func Classify(raw hit.Raw) result.PromotionCategory {
	if strings.TrimSpace(raw.Meta.PromotionName) != "" {
		return result.StaticContent
	}
	if vals := raw.Values(InjectedPromotionTag); len(vals) > 0 {
		if injected, err := strconv.ParseBool(strings.TrimSpace(vals[0])); err == nil && injected {
			return result.CardinalPlacement
		}
	}
	return result.PromotionNone
}
