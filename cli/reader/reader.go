package reader

// ListFunctions delegates to the package-level reader.
func ListFunctions(moduleFilter string, includePrivate bool) []FunctionSummary {
	return defaultReader.ListFunctions(moduleFilter, includePrivate)
}

// InspectFunction delegates to the package-level reader.
func InspectFunction(fullName string) (*FunctionDetail, error) {
	return defaultReader.InspectFunction(fullName)
}

// ListHijacked delegates to the package-level reader.
func ListHijacked() []HijackedItem {
	return defaultReader.ListHijacked()
}

// StatsMetrics delegates to the package-level reader.
func StatsMetrics() *MetricsSnapshot {
	return defaultReader.StatsMetrics()
}

// StatsState delegates to the package-level reader.
func StatsState() *StateStats {
	return defaultReader.StatsState()
}

// StatsLogs delegates to the package-level reader.
func StatsLogs() *LogStats {
	return defaultReader.StatsLogs()
}
