package stats

// Dashboard holds the headline record counts shown on the admin dashboard.
type Dashboard struct {
	Users        int `json:"users"`
	Doctors      int `json:"doctors"`
	Participants int `json:"participants"`
	Appointments int `json:"appointments"`
	Programs     int `json:"programs"`
}
