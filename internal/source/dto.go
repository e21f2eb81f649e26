package source

// Upstream payload shapes. The array fields are pointers so a missing or
// null array is distinguishable from an empty one: absent means the contract
// is violated, empty just means no rows in the window.

type itemsPayload struct {
	Items *[]map[string]interface{} `json:"items"`
}

type eventsPayload struct {
	PhaseEvents *[]map[string]interface{} `json:"phase_events"`
}
