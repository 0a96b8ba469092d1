package httpdto

// PresignPictureRequest is used for POST /v1/uploads/picture
type PresignPictureRequest struct {
	ContentType string `json:"content_type" binding:"required"`
	FileSize    int64  `json:"file_size" binding:"required"`
}
