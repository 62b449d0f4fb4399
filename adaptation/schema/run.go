package schema

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/plugin/soft_delete"
)

// Run is one evaluation of an adaptation method against a corrupted test
// set. Corruption, Method and NumSample are stored verbatim as resolved
// at submission time; NumSample may be empty when a submission supplied
// exactly two parameters.
type Run struct {
	ID         *uuid.UUID            `gorm:"type:char(36);primaryKey" json:"id" readonly:"true"`
	CreatedAt  *time.Time            `json:"createdAt" readonly:"true"`
	UpdatedAt  *time.Time            `json:"updatedAt" readonly:"true"`
	Corruption string                `gorm:"type:varchar(255);not null" json:"corruption"`
	Method     string                `gorm:"type:varchar(255);not null" json:"method"`
	NumSample  string                `gorm:"type:varchar(255)" json:"numSample"`
	Progress   string                `gorm:"type:varchar(255);not null;default 'Queued'" json:"progress"`
	NumRetries uint                  `gorm:"not null;default 0" json:"numRetries" readonly:"true"`
	DeletedAt  soft_delete.DeletedAt `gorm:"softDelete:nano;not null;default:0;index:deleted_name" json:"-" readonly:"true"`
}

func (r *Run) Bind(ctx *gin.Context) error {
	var in Run
	if err := ctx.ShouldBindJSON(&in); err != nil {
		return err
	}
	r.Corruption = in.Corruption
	r.Method = in.Method
	r.NumSample = in.NumSample
	return nil
}
