// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/pdiddy/job-aggregator/pkg/types"
)

// searchBody is the POST /search payload. Zero start and limit take the
// engine defaults.
type searchBody struct {
	Query            string   `json:"query" binding:"max=200"`
	Location         string   `json:"location" binding:"max=100"`
	Start            int      `json:"start" binding:"gte=0"`
	Limit            int      `json:"limit" binding:"gte=0"`
	ExperienceLevels []string `json:"experience_level" binding:"omitempty,dive,experience_level"`
	Platforms        []string `json:"platforms" binding:"omitempty,dive,platform"`
	CompanySizes     []string `json:"company_size" binding:"omitempty,dive,company_size"`
}

func (b searchBody) request() types.SearchRequest {
	req := types.SearchRequest{
		Query:     b.Query,
		Location:  b.Location,
		Start:     b.Start,
		Limit:     b.Limit,
		Platforms: b.Platforms,
	}
	for _, l := range b.ExperienceLevels {
		req.ExperienceLevels = append(req.ExperienceLevels, types.ExperienceLevel(l))
	}
	for _, s := range b.CompanySizes {
		req.CompanySizes = append(req.CompanySizes, types.CompanySize(s))
	}
	return req
}

var (
	registerOnce sync.Once
	registerErr  error
)

// registerValidators adds the enum tags used by searchBody to gin's
// validator. Safe to call more than once; every call returns the result of
// the first.
func registerValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("binding validator is %T, not *validator.Validate", binding.Validator.Engine())
			return
		}
		registerErr = errors.Join(
			v.RegisterValidation("experience_level", func(fl validator.FieldLevel) bool {
				return types.ExperienceLevel(fl.Field().String()).Valid()
			}),
			v.RegisterValidation("company_size", func(fl validator.FieldLevel) bool {
				return types.CompanySize(fl.Field().String()).Valid()
			}),
			v.RegisterValidation("platform", func(fl validator.FieldLevel) bool {
				name := fl.Field().String()
				if strings.EqualFold(strings.TrimSpace(name), types.PlatformAll) {
					return true
				}
				_, err := types.ParsePlatform(name)
				return err == nil
			}),
		)
		if registerErr != nil {
			registerErr = fmt.Errorf("registering search validators: %w", registerErr)
		}
	})
	return registerErr
}

// bindError turns a binding failure into a short client message.
func bindError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid JSON body: " + err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "experience_level":
		return fmt.Sprintf("%s: unknown experience level %q", field, fe.Value())
	case "company_size":
		return fmt.Sprintf("%s: unknown company size %q", field, fe.Value())
	case "platform":
		return fmt.Sprintf("%s: unknown platform %q", field, fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	}
	return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
}
