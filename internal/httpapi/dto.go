package httpapi

import (
	"regexp"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/roach88/memberbridge/internal/member"
)

// memberRequest is the create/update payload. The name must not
// contain digits and the phone must be 10 to 15 digits with an
// optional leading plus.
type memberRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=25,excludesall=0123456789"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"required,phone"`
}

func (r memberRequest) toMember() member.Member {
	return member.Member{
		Name:  r.Name,
		Email: r.Email,
		Phone: r.Phone,
	}
}

// memberResponse is the wire form of a member. The identifier is
// always a string regardless of which store served the read.
type memberResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toResponse(m member.Member) memberResponse {
	return memberResponse{
		ID:        m.ID.String(),
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toResponseList(members []member.Member) []memberResponse {
	out := make([]memberResponse, len(members))
	for i, m := range members {
		out[i] = toResponse(m)
	}
	return out
}

var phoneRe = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

// registerValidators installs the custom phone rule on gin's shared
// validator engine. Safe to call more than once.
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})
}
