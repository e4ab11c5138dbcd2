// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package forms validates the public-facing comment and share-by-email
// forms. Validation failures come back as field-level messages so the
// handlers can re-render the form without losing the submitted input.
package forms

import (
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance. Struct tag rules mirror the
// field bounds enforced by the database schema.
var validate = validator.New()

// Errors maps a form field name to a human-readable validation message.
type Errors map[string]string

// Has reports whether the named field failed validation. Templates use it
// to highlight individual fields.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Get returns the message for the named field, or "".
func (e Errors) Get(field string) string {
	return e[field]
}

// CommentForm carries a proposed comment on a post.
type CommentForm struct {
	Name  string `validate:"required,max=100"`
	Email string `validate:"required,email"`
	Body  string `validate:"required"`
}

// ShareForm carries a "recommend this post" request. Comments is optional
// free text included in the email body.
type ShareForm struct {
	Name     string `validate:"required,max=25"`
	Email    string `validate:"required,email"`
	To       string `validate:"required,email"`
	Comments string `validate:"max=2000"`
}

// ParseComment builds a CommentForm from submitted form values.
func ParseComment(values url.Values) CommentForm {
	return CommentForm{
		Name:  strings.TrimSpace(values.Get("name")),
		Email: strings.TrimSpace(values.Get("email")),
		Body:  strings.TrimSpace(values.Get("body")),
	}
}

// ParseShare builds a ShareForm from submitted form values.
func ParseShare(values url.Values) ShareForm {
	return ShareForm{
		Name:     strings.TrimSpace(values.Get("name")),
		Email:    strings.TrimSpace(values.Get("email")),
		To:       strings.TrimSpace(values.Get("to")),
		Comments: strings.TrimSpace(values.Get("comments")),
	}
}

// Validate checks the comment form and returns field-level errors.
// A nil result means the form is valid.
func (f CommentForm) Validate() Errors {
	return collect(validate.Struct(f))
}

// Validate checks the share form and returns field-level errors.
// A nil result means the form is valid.
func (f ShareForm) Validate() Errors {
	return collect(validate.Struct(f))
}

// collect converts validator errors into per-field messages.
func collect(err error) Errors {
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Errors{"form": "Invalid input."}
	}

	errs := make(Errors, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		errs[field] = message(field, fe.Tag(), fe.Param())
	}
	return errs
}

// message renders a friendly text for a failed validation tag.
func message(field, tag, param string) string {
	switch tag {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return "Must be at most " + param + " characters."
	default:
		return "Invalid value for " + field + "."
	}
}
