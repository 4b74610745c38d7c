package crossref

// WorksResponse is the response envelope of GET /works.
type WorksResponse struct {
	Status      string       `json:"status"`
	MessageType string       `json:"message-type"`
	Message     WorksMessage `json:"message"`
}

// WorksMessage holds the result page of a works query.
type WorksMessage struct {
	TotalResults int    `json:"total-results"`
	Items        []Work `json:"items"`
}

// Work is a Crossref work restricted to the fields requested via select.
type Work struct {
	DOI            string    `json:"DOI"`
	Title          []string  `json:"title"`
	Author         []Author  `json:"author"`
	Issued         DateParts `json:"issued"`
	PublishedPrint DateParts `json:"published-print"`
	ContainerTitle []string  `json:"container-title"`
}

// Author is a contributor. Organizations carry Name instead of Given/Family.
type Author struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"`
}

// DateParts is Crossref's partial date representation: [[year, month, day]].
type DateParts struct {
	DateParts [][]int `json:"date-parts"`
}

// Year returns the year component, or 0 if absent.
func (d DateParts) Year() int {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return 0
	}
	return d.DateParts[0][0]
}
