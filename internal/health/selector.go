package health

import "strings"

// AllShops is the selector entry that disables shop filtering.
const AllShops = "All Shops"

func IsAllShops(shop string) bool {
	s := strings.TrimSpace(shop)
	return s == "" || strings.EqualFold(s, AllShops) || strings.EqualFold(s, "all")
}

// FilterByShop keeps records whose shop name matches, ignoring case.
func FilterByShop(records []PerformanceRecord, shop string) []PerformanceRecord {
	if IsAllShops(shop) {
		return records
	}
	want := strings.TrimSpace(shop)
	out := make([]PerformanceRecord, 0, len(records))
	for _, r := range records {
		if strings.EqualFold(strings.TrimSpace(r.ShopName), want) {
			out = append(out, r)
		}
	}
	return out
}

// ShopOptions returns the selector entries: the sentinel, then the configured
// shops with duplicates removed.
func ShopOptions(shops []string) []string {
	out := make([]string, 0, len(shops)+1)
	out = append(out, AllShops)
	seen := map[string]bool{strings.ToLower(AllShops): true}
	for _, s := range shops {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
