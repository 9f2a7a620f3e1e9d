package entity

import "github.com/google/uuid"

// ConvertParams are the per-task tuning knobs carried on the wire. Crop,
// offset and overlap values below 1 are fractions of the scroll-axis
// extent, values of 1 and above are absolute pixels.
type ConvertParams struct {
	CropTop      float64 `json:"crop_top"`
	CropBottom   float64 `json:"crop_bottom"`
	ExpectOffset float64 `json:"expect_offset"`
	MinOverlap   float64 `json:"min_overlap"`
	ApproxDiff   float64 `json:"approx_diff"`
	Transpose    bool    `json:"transpose"`
	SeamWidth    int     `json:"seam_width"`
	Verbose      bool    `json:"verbose"`
}

func DefaultConvertParams() ConvertParams {
	return ConvertParams{
		CropTop:      0.15,
		CropBottom:   0.15,
		ExpectOffset: 0.3,
		MinOverlap:   0.15,
		ApproxDiff:   1.0,
	}
}

// ConversionRequestMessage is the inbound message from the task.convert queue.
type ConversionRequestMessage struct {
	TaskID   uuid.UUID     `json:"task_id"`
	VideoKey string        `json:"video_key"`
	FileName string        `json:"file_name"`
	FileSize int64         `json:"file_size"`
	Params   ConvertParams `json:"params"`
}

// ConversionStatusMessage is the outbound message published to the
// task.status queue.
type ConversionStatusMessage struct {
	TaskID       uuid.UUID  `json:"task_id"`
	Status       TaskStatus `json:"status"`
	VideoKey     string     `json:"video_key"`
	ResultKey    string     `json:"result_key,omitempty"`
	PageCount    int        `json:"page_count,omitempty"`
	FrameCount   int        `json:"frame_count,omitempty"`
	CanvasHeight int        `json:"canvas_height,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	Attempt      int        `json:"attempt"`
	MaxAttempts  int        `json:"max_attempts"`
}
