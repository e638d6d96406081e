package engine

// RecycleCount maps the catalog size of a category to the number of
// already-seen animals to requeue. Below minCatalog the catalog is too
// small to safely repeat items; between the thresholds the count ramps
// linearly up to base; above maxCatalog it stays flat at base.
func RecycleCount(catalogSize, base, minCatalog, maxCatalog int) int {
	switch {
	case catalogSize <= minCatalog:
		return 0
	case catalogSize <= maxCatalog:
		return base * (catalogSize - minCatalog) / (maxCatalog - minCatalog)
	default:
		return base
	}
}
