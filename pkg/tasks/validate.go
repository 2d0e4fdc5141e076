package tasks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mo-tomi/nowtask5/pkg/model"
	"github.com/mo-tomi/nowtask5/pkg/util"
)

var (
	ErrNotFound   = errors.New("task not found")
	ErrInvalid    = errors.New("invalid task")
	ErrEmptyTitle = fmt.Errorf("%w: title is empty", ErrInvalid)
	ErrMaxDepth   = errors.New("maximum subtask depth reached")
)

// rules is validated against a task after every create or update.
type rules struct {
	Title     string         `validate:"required,max=500"`
	Priority  model.Priority `validate:"omitempty,oneof=high medium low"`
	Duration  *int           `validate:"omitempty,min=0,max=1440"`
	StartTime string         `validate:"omitempty,hhmm"`
	EndTime   string         `validate:"omitempty,hhmm"`
	Routine   string         `validate:"omitempty,oneof=breakfast lunch dinner brush sleep"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := util.ParseClock(fl.Field().String())
		return err == nil
	})
	return v
}

func (r *Repository) check(t *model.Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	err := r.validate.Struct(rules{
		Title:     t.Title,
		Priority:  t.Priority,
		Duration:  t.Duration,
		StartTime: t.StartTime,
		EndTime:   t.EndTime,
		Routine:   string(t.RoutineType),
	})
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", ErrInvalid, err)
}
