package models

// TransactionResponse is returned by the build endpoints.
type TransactionResponse struct {
	AccountID      string `json:"account_id"`
	OperationCount int    `json:"operation_count"`
	XDR            string `json:"xdr"`
	SigningURI     string `json:"signing_uri"`
}

// RelayResponse is returned by the signing-relay endpoint.
type RelayResponse struct {
	URL string `json:"url"`
}

// UploadResponse is returned by the file upload endpoint.
type UploadResponse struct {
	CID     string `json:"cid"`
	IPFSURL string `json:"ipfs_url"`
}

// SubmissionListResponse wraps a page of submission history.
type SubmissionListResponse struct {
	AccountID   string       `json:"account_id"`
	Submissions []Submission `json:"submissions"`
	Count       int          `json:"count"`
}

// ErrorResponse is the JSON envelope for all error replies.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Code    int               `json:"code"`
	Fields  map[string]string `json:"fields,omitempty"`
}
