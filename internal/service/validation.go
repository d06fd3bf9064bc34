package service

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/SteelMorgan/log4j-inspector/internal/domain"
)

// InputKind is how a file is read
type InputKind int

const (
	InputXML       InputKind = iota // Plain log4j XML
	InputContainer                  // Zip export holding the primary and archived logs
)

var inputKinds = map[string]InputKind{
	".xml": InputXML,
	".ram": InputContainer,
	".zip": InputContainer,
}

// ValidateFileName checks that name has an extension the inspector reads
func ValidateFileName(name string) (InputKind, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if kind, ok := inputKinds[ext]; ok {
		return kind, nil
	}

	msg := "file has no extension"
	if ext != "" {
		msg = fmt.Sprintf("unsupported file extension %q", ext)
	}
	return 0, &domain.ValidationError{
		Field:   "file",
		Message: msg,
		Instructions: []string{
			"Select a log4j XML log (.xml)",
			`or a support export (.ram, .zip) containing log\BVC.xml`,
		},
		Err: domain.ErrUnsupportedFile,
	}
}
