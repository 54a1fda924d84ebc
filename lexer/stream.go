package lexer

import (
	"github.com/SamJeffrey8/helios/errs"
	"github.com/SamJeffrey8/helios/source"
)

// PeekPurpose scans only as far as needed to read the program's purpose
// keyword and script name, without paying for full tokenization or
// bracket grouping.
func PeekPurpose(u *source.Unit) (purpose, name string, err error) {
	f := newFlat(u)

	purposeTok, err := f.Next()
	if err != nil {
		return "", "", err
	}
	if purposeTok.Kind != Word {
		return "", "", &errs.SyntaxError{Site: purposeTok.Site, Message: "expected purpose keyword"}
	}

	nameTok, err := f.Next()
	if err != nil {
		return "", "", err
	}
	if nameTok.Kind != Word {
		return "", "", &errs.SyntaxError{Site: nameTok.Site, Message: "expected script name after purpose keyword"}
	}

	return purposeTok.Text, nameTok.Text, nil
}
