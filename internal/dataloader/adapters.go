package dataloader

import "context"

// FetchFunc is a bulk store query returning the records it found, in any order.
type FetchFunc[K comparable, V any] func(ctx context.Context, keys []K) ([]V, error)

// ByKey adapts a fetch-by-ids query into a BatchFunc.
// Keys without a matching record resolve to the zero value of V.
func ByKey[K comparable, V any](fetch FetchFunc[K, V], keyOf func(V) K) BatchFunc[K, V] {
	return func(ctx context.Context, keys []K) ([]V, error) {
		records, err := fetch(ctx, keys)
		if err != nil {
			return nil, err
		}

		byKey := make(map[K]V, len(records))
		for _, r := range records {
			byKey[keyOf(r)] = r
		}

		values := make([]V, len(keys))
		for i, k := range keys {
			values[i] = byKey[k]
		}
		return values, nil
	}
}

// Grouped adapts a fetch-by-foreign-key query into a BatchFunc.
// Records are partitioned by groupOf; keys without records resolve to an
// empty, non-nil slice. Record order within a group follows fetch order.
func Grouped[K comparable, V any](fetch FetchFunc[K, V], groupOf func(V) K) BatchFunc[K, []V] {
	return func(ctx context.Context, keys []K) ([][]V, error) {
		records, err := fetch(ctx, keys)
		if err != nil {
			return nil, err
		}

		groups := make(map[K][]V, len(keys))
		for _, r := range records {
			k := groupOf(r)
			groups[k] = append(groups[k], r)
		}

		values := make([][]V, len(keys))
		for i, k := range keys {
			if g, ok := groups[k]; ok {
				values[i] = g
			} else {
				values[i] = []V{}
			}
		}
		return values, nil
	}
}
