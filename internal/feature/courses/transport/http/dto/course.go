// Package dto defines data transfer objects for the courses feature's HTTP transport layer.
package dto

// CourseItem is one course in list and detail responses.
type CourseItem struct {
	Title string `json:"title"`
	Owner string `json:"owner"`
}

// CourseRequest is the body of POST and PUT /courses.
// Optional fields stay nil when absent or null.
type CourseRequest struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	EstimatedTime   *string `json:"estimatedTime"`
	MaterialsNeeded *string `json:"materialsNeeded"`
}
