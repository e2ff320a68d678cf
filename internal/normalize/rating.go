package normalize

import "catalog-normalizer/internal/model"

var ratingGroups = []fieldGroup{
	group("rating.value", "rating.count"),
	group("ratings.average", "ratings.total"),
	group("ratingValue", "ratingCount"),
}

// ProductRating resolves the rating value and count of a raw product or store.
func ProductRating(product any) model.Rating {
	value, count := resolveGroup(product, ratingGroups)
	return model.Rating{
		Value: toNumber(value),
		Count: toNumber(count),
	}
}
