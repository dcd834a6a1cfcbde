package stores

import "store-feedback/internal/models"

// Defaults is the directory used when no stores file is configured.
func Defaults() []models.StoreLocation {
	return []models.StoreLocation{
		{
			ID:              "lafayette",
			Name:            "Restoration Logistics Lafayette",
			GMBName:         "Restoration Logistics",
			Address:         "652 Princeton Pl",
			City:            "Lafayette",
			State:           "CO",
			Zip:             "80026",
			Lat:             40.0047666,
			Lng:             -105.1283341,
			GoogleReviewURL: "https://g.page/r/CQd42cdal_i-EBM/review",
		},
		{
			ID:              "fort-collins",
			Name:            "Restoration Logistics Fort Collins",
			GMBName:         "Restoration Logistics",
			Address:         "312 Flicker Dr",
			City:            "Fort Collins",
			State:           "CO",
			Zip:             "80526",
			Lat:             40.5503122,
			Lng:             -105.0818479,
			GoogleReviewURL: "https://g.page/r/CVXqnUCZot-qEBM/review",
		},
		{
			ID:              "centennial",
			Name:            "Restoration Logistics Centennial",
			GMBName:         "Restoration Logistics",
			Address:         "5798 S Laredo Ct",
			City:            "Centennial",
			State:           "CO",
			Zip:             "80015",
			Lat:             39.6111941,
			Lng:             -104.800549,
			GoogleReviewURL: "https://g.page/r/CRGJYSbH86J8EBM/review",
		},
		{
			ID:              "denver",
			Name:            "Restoration Logistics Denver",
			GMBName:         "Restoration Logistics",
			Address:         "5360 Washington St UNIT D",
			City:            "Denver",
			State:           "CO",
			Zip:             "80216",
			Lat:             39.7934311,
			Lng:             -104.9771281,
			GoogleReviewURL: "https://g.page/r/CQ6BNL8oCS-_EBM/review",
		},
		{
			ID:              "boulder",
			Name:            "Restoration Logistics Boulder",
			GMBName:         "Restoration Logistics",
			Address:         "1800 Commerce St Unit G",
			City:            "Boulder",
			State:           "CO",
			Zip:             "80301",
			Lat:             40.0181021,
			Lng:             -105.2316442,
			GoogleReviewURL: "https://g.page/r/CVH1yclL-wF8EBM/review",
		},
	}
}
