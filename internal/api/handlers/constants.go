package handlers

const (
	// Upper bound on a single generate request, all variations included
	generateTimeoutSecs = 10
)
