package googleplaces

// findPlaceResponse mirrors the Find Place From Text payload.
type findPlaceResponse struct {
	Status     string `json:"status"`
	Candidates []struct {
		PlaceID string `json:"place_id"`
	} `json:"candidates"`
}

// detailsResponse mirrors the Place Details payload, trimmed to opening hours.
type detailsResponse struct {
	Status string `json:"status"`
	Result struct {
		OpeningHours struct {
			Periods []period `json:"periods"`
		} `json:"opening_hours"`
	} `json:"result"`
}

type period struct {
	Open  *dayTime `json:"open,omitempty"`
	Close *dayTime `json:"close,omitempty"`
}

type dayTime struct {
	Day  int    `json:"day"`  // 0 = Sunday
	Time string `json:"time"` // "hhmm"
}
