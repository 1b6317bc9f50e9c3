// Package assets resolves the assets referenced from entry data.
package assets

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/stacklok/entries-server/internal/service"
)

// referencePattern matches quoted asset references inside serialized field
// content, e.g. "asset::main::photos/cat.jpg".
var referencePattern = regexp.MustCompile(`"asset::([^"]+)"`)

// ExtractIDs collects the asset ids referenced from the string values of
// values. Escaped slashes are unescaped and duplicates removed, keeping the
// first occurrence. Keys are scanned in sorted order.
func ExtractIDs(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for k, v := range values {
		if _, ok := v.(string); ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	var ids []string
	for _, k := range keys {
		for _, m := range referencePattern.FindAllStringSubmatch(values[k].(string), -1) {
			id := strings.ReplaceAll(m[1], `\/`, "/")
			if !slices.Contains(ids, id) {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// Preload resolves the ids and drops the ones that cannot be resolved.
func Preload(ctx context.Context, resolver service.AssetResolver, ids []string) []*service.Asset {
	out := make([]*service.Asset, 0, len(ids))
	if resolver == nil {
		return out
	}
	for _, id := range ids {
		asset, err := resolver.Find(ctx, id)
		if err != nil {
			if !errors.Is(err, service.ErrAssetNotFound) {
				slog.WarnContext(ctx, "Failed to resolve asset", "asset", id, "error", err)
			}
			continue
		}
		out = append(out, asset)
	}
	return out
}
