package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name    string `json:"name"`
	Amount  Money  `json:"amount"`
	Percent int    `json:"percent"`
}

// CampaignProgress is a campaign's raised amount against its target.
type CampaignProgress struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Raised  Money  `json:"raised"`
	Target  Money  `json:"target"`
	Percent int    `json:"percent"`
}

// Stats is the dashboard summary derived from the three collections.
type Stats struct {
	TotalDonationAmount   Money              `json:"totalDonations"`
	TotalBeneficiaries    int                `json:"totalBeneficiaries"`
	ActiveCampaignCount   int                `json:"activeCampaigns"`
	DistinctLocationCount int                `json:"totalLocations"`
	PeopleReached         int                `json:"peopleReached"`
	ByCategory            []CategoryAmount   `json:"byCategory"`
	Campaigns             []CampaignProgress `json:"campaigns"`
	ByMonth               []MonthAmount      `json:"byMonth"`
}

// MonthAmount is the donation total and aid activity of one calendar month.
type MonthAmount struct {
	Month         string `json:"month"`
	Amount        Money  `json:"amount"`
	Donations     int    `json:"donations"`
	Beneficiaries int    `json:"beneficiariesAided"`
}
