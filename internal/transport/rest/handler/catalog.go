package handler

import (
	"net/http"

	"hornethelper/internal/model"
)

// Majors handles GET /v1/catalog/majors
func Majors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"departments":  model.Departments,
		"majors":       model.AllMajors(),
		"defaultMajor": model.DefaultMajor,
	})
}

// Locations handles GET /v1/catalog/locations
func Locations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.CampusLocations)
}
