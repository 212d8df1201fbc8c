/*
Copyright © 2026 Jayson Grace <jayson.e.grace@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Disk formats accepted by VM Import.
const (
	FormatOVA  = "ova"
	FormatVMDK = "vmdk"
	FormatVHD  = "vhd"
	FormatVHDX = "vhdx"
	FormatRAW  = "raw"
)

var supportedFormats = []string{FormatOVA, FormatVMDK, FormatVHD, FormatVHDX, FormatRAW}

var extensionFormats = map[string]string{
	".ova":  FormatOVA,
	".vmdk": FormatVMDK,
	".vhd":  FormatVHD,
	".vhdx": FormatVHDX,
	".raw":  FormatRAW,
	".img":  FormatRAW,
}

// ValidateInput checks that path is a readable, non-empty regular file and
// resolves the disk format. An explicit format wins over the extension.
func ValidateInput(path, format string) (string, error) {
	if path == "" {
		return "", &ConfigError{Message: "no input file given", Hint: "Pass the image with --input <path>"}
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &ConfigError{Message: fmt.Sprintf("input file not found: %s", path)}
		}
		return "", &ConfigError{Message: fmt.Sprintf("cannot access input file %s", path), Cause: err}
	}
	if info.IsDir() {
		return "", &ConfigError{Message: fmt.Sprintf("input path is a directory: %s", path)}
	}
	if info.Size() == 0 {
		return "", &ConfigError{Message: fmt.Sprintf("input file is empty: %s", path)}
	}

	f, err := os.Open(path)
	if err != nil {
		return "", &ConfigError{Message: fmt.Sprintf("input file is not readable: %s", path), Cause: err}
	}
	_ = f.Close()

	return ResolveFormat(path, format)
}

// ResolveFormat normalizes format, or infers it from the file extension
// when empty.
func ResolveFormat(path, format string) (string, error) {
	if format != "" {
		f := strings.ToLower(strings.TrimSpace(format))
		if f == "img" {
			f = FormatRAW
		}
		for _, s := range supportedFormats {
			if f == s {
				return f, nil
			}
		}
		return "", &ConfigError{
			Message: fmt.Sprintf("unsupported disk format %q", format),
			Hint:    "Supported formats: " + strings.Join(supportedFormats, ", "),
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensionFormats[ext]; ok {
		return f, nil
	}
	return "", &ConfigError{
		Message: fmt.Sprintf("cannot infer disk format from %q", filepath.Base(path)),
		Hint:    "Pass --format (" + strings.Join(supportedFormats, ", ") + ")",
	}
}
