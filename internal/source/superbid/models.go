package superbid

// APIResponse is the shape of the Superbid lot search endpoint.
type APIResponse struct {
	PageInfo PageInfo `json:"pageInfo"`
	Lots     []Lot    `json:"lots"`
}

type PageInfo struct {
	Page       int `json:"page"`
	NumPages   int `json:"numPages"`
	PageSize   int `json:"pageSize"`
	NumEntries int `json:"numEntries"`
}

type Lot struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	LotNumber         string   `json:"lotNumber"`
	DetailURL         string   `json:"detailUrl"`
	PhotoURL          string   `json:"photoUrl"`
	CurrentBid        *float64 `json:"currentBid"`
	MinimumBid        *float64 `json:"minimumBid"`
	AppraisedValue    *float64 `json:"appraisedValue"`
	City              string   `json:"city"`
	State             string   `json:"state"`
	Modality          string   `json:"modality"`
	Category          string   `json:"category"`
	AuctionDate       string   `json:"auctionDate"`
	AcceptsFinancing  bool     `json:"acceptsFinancing"`
	Vehicle           *Detail  `json:"vehicle"`
}

// Detail carries the structured vehicle attributes Superbid exposes for
// automotive lots.
type Detail struct {
	Brand           string `json:"brand"`
	Model           string `json:"model"`
	Version         string `json:"version"`
	YearModel       *int   `json:"yearModel"`
	YearManufacture *int   `json:"yearManufacture"`
	Mileage         *int   `json:"mileage"`
	Color           string `json:"color"`
	FuelType        string `json:"fuelType"`
	Transmission    string `json:"transmission"`
	Condition       string `json:"condition"`
}
