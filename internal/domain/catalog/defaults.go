package catalog

// Default returns the built-in catalogs. All exercises follow the
// convention that the engaged value is the larger one on the tracked
// axis (threshold_up < threshold_down); loaders reject anything else.
func Default() *Catalog {
	return &Catalog{
		Exercises: []Exercise{
			{
				ID:            "squat",
				Name:          "Squat",
				Joint:         "hip",
				Axis:          "y",
				ThresholdUp:   0.55,
				ThresholdDown: 0.65,
				CooldownMS:    800,
				SetsTarget:    3,
				RepsPerSet:    10,
				RestTimeSec:   45,
			},
			{
				ID:            "pushup",
				Name:          "Push-up",
				Joint:         "shoulder",
				Axis:          "y",
				ThresholdUp:   0.45,
				ThresholdDown: 0.60,
				CooldownMS:    700,
				SetsTarget:    3,
				RepsPerSet:    12,
				RestTimeSec:   60,
			},
			{
				ID:            "forward_bend",
				Name:          "Forward Bend",
				Joint:         "nose",
				Axis:          "y",
				ThresholdUp:   0.35,
				ThresholdDown: 0.55,
				CooldownMS:    1000,
				SetsTarget:    2,
				RepsPerSet:    8,
				RestTimeSec:   30,
			},
		},
		Diseases: []DiseaseDef{
			{
				ID:     "forward_head",
				Weight: 0.5,
				Items: []DiseaseItem{
					{ID: "forward_head", Weight: 0.8, Kind: "distance", Warning: 2, Danger: 3.5},
					{ID: "shoulder_tilt", Weight: 0.2, Kind: "distance", Warning: 1.5, Danger: 3},
				},
				Tip: "Tuck your chin and slide your head back over your shoulders every hour.",
			},
			{
				ID:     "shoulder_imbalance",
				Weight: 0.5,
				Items: []DiseaseItem{
					{ID: "shoulder_tilt", Weight: 0.7, Kind: "distance", Warning: 1.5, Danger: 3},
					{ID: "shoulder_angle", Weight: 0.3, Kind: "angle", Warning: 85, Danger: 75},
				},
				Tip: "Stretch the elevated shoulder and switch the side you carry bags on.",
			},
		},
	}
}
