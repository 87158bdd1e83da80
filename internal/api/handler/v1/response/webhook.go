package response

type POSEventResponse struct {
	Status      string `json:"status"`
	Applied     bool   `json:"applied"`
	PointsDelta int    `json:"points_delta"`
}
