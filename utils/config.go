package utils

import "github.com/JCrossman/dats-booking-sub000/config"

// IsProduction reports whether the app runs with ENV=production.
func IsProduction() bool {
	return config.IsProduction()
}
