package shapeserver

// Box is a face rectangle in pixels
type Box struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// DetectRequest is the request body for POST /detect
type DetectRequest struct {
	Img     string `json:"img"`
	MinSize int    `json:"min_size"`
}

// DetectResponse is the response from POST /detect
type DetectResponse struct {
	Faces []Box `json:"faces"`
}

// LandmarksRequest is the request body for POST /landmarks
type LandmarksRequest struct {
	Img string `json:"img"`
	Box Box    `json:"box"`
}

// LandmarkPoint is one predicted landmark
type LandmarkPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LandmarksResponse is the response from POST /landmarks
type LandmarksResponse struct {
	Points []LandmarkPoint `json:"points"`
}
