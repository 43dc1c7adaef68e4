package cart

import "strconv"

const (
	// variantAbsent marks a size/color the shopper never picked. It is a
	// reserved token, distinct from the empty string, so (5, nil, "red")
	// and (5, "", "red") produce different keys.
	variantAbsent = "__unset__"

	keySeparator = "|"
)

// IdentityKey derives the stable line-item key for a product and its chosen
// variant. Pure and deterministic: equal (id, size, color) triples always
// produce equal keys, distinct triples distinct keys.
func IdentityKey(productID int64, size, color *string) string {
	return strconv.FormatInt(productID, 10) +
		keySeparator + variantToken(size) +
		keySeparator + variantToken(color)
}

func variantToken(v *string) string {
	if v == nil {
		return variantAbsent
	}
	return *v
}
