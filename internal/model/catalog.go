package model

import "sort"

// Location is a campus study spot
type Location struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Departments maps each college to the majors it offers
var Departments = map[string][]string{
	"College of Humanities, Education and Social Sciences": {
		"Africana Studies", "Global Studies", "Women's and Gender Studies", "Education",
		"Languages and Literatures", "History", "Political Science", "Philosophy",
		"Mass Communications", "Visual and Performing Arts", "Sociology", "Criminal Justice",
	},
	"College of Business": {
		"Accounting", "Economics", "Finance", "Business Administration", "Aviation", "Sport Management",
	},
	"College of Agriculture, Science and Technology": {
		"Agriculture & Natural Resources", "Biological Sciences", "Chemistry", "Human Ecology",
		"Physics", "Engineering", "Mathematics", "Computer Science",
	},
	"Wesley College of Health and Behavioral Sciences": {
		"Nursing", "Psychology", "Social Work", "Public and Allied Health Sciences",
	},
}

// CampusLocations are the suggested meeting places
var CampusLocations = []Location{
	{Name: "Martin Luther King Jr. Student Center", Description: "Hosts dining options, event spaces, and student services."},
	{Name: "Loockerman Hall", Description: "A National Historic Landmark and one of the oldest buildings on campus."},
	{Name: "William C. Jason Library", Description: "The main library providing academic resources and study spaces."},
	{Name: "Bank of America Building", Description: "Houses classrooms and academic departments."},
	{Name: "Education and Humanities Building", Description: "Contains classrooms and offices for education and humanities departments."},
	{Name: "Luna I. Mishoe Science Center", Description: "Comprises the North and South sections, hosting science laboratories and classrooms."},
	{Name: "University Village Apartments", Description: "Student housing complex with multiple buildings and a café."},
	{Name: "Courtyard Apartments", Description: "Residential housing offering apartment-style living for students."},
	{Name: "Conrad Hall", Description: "Academic building with classrooms and faculty offices."},
}

// AllMajors returns every major, sorted
func AllMajors() []string {
	var out []string
	for _, majors := range Departments {
		out = append(out, majors...)
	}
	sort.Strings(out)
	return out
}

// IsKnownMajor reports whether major is in the catalog or is the default placeholder
func IsKnownMajor(major string) bool {
	if major == DefaultMajor {
		return true
	}
	for _, majors := range Departments {
		for _, m := range majors {
			if m == major {
				return true
			}
		}
	}
	return false
}
