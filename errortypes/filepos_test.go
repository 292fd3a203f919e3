package errortypes_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/robfig/ctemplate/errortypes"
)

func TestErrFilePos(t *testing.T) {
	err := errortypes.New(errortypes.CodeSyntax, "page.tpl", 12, 4, "unexpected %q", "}}")
	fp := errortypes.ToErrFilePos(err)
	if fp == nil {
		t.Fatalf("expected ErrFilePos, got nil")
	}
	if fp.Code() != errortypes.CodeSyntax {
		t.Errorf("Code() = %v, want %v", fp.Code(), errortypes.CodeSyntax)
	}
	if fp.File() != "page.tpl" || fp.Line() != 12 || fp.Col() != 4 {
		t.Errorf("got file=%q line=%d col=%d", fp.File(), fp.Line(), fp.Col())
	}
	if want := `page.tpl:12:4: unexpected "}}"`; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errortypes.Is(err, errortypes.CodeSyntax) {
		t.Errorf("Is(err, CodeSyntax) = false")
	}
	if errortypes.Is(err, errortypes.CodeIO) {
		t.Errorf("Is(err, CodeIO) = true")
	}
}

func TestToErrFilePosUnwraps(t *testing.T) {
	base := errortypes.New(errortypes.CodeIO, "inc.tpl", 3, 0, "read failed")
	wrapped := fmt.Errorf("loading template: %w", base)
	fp := errortypes.ToErrFilePos(wrapped)
	if fp == nil {
		t.Fatalf("expected unwrap to find ErrFilePos")
	}
	if fp.Code() != errortypes.CodeIO {
		t.Errorf("Code() = %v, want %v", fp.Code(), errortypes.CodeIO)
	}
}

func TestToErrFilePosNoMatch(t *testing.T) {
	if errortypes.ToErrFilePos(errors.New("plain")) != nil {
		t.Errorf("expected nil for a plain error")
	}
	if errortypes.ToErrFilePos(nil) != nil {
		t.Errorf("expected nil for nil error")
	}
}
