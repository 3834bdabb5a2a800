package preview

import (
	"archive/zip"
	"bytes"
	"fmt"

	"sitegen/internal/models"
)

// Bundle file names.
const (
	IndexFile  = "index.html"
	StylesFile = "styles.css"
	ScriptFile = "script.js"
)

type bundleFile struct {
	name string
	data []byte
}

// Bundle packs the project into a zip archive: index.html linking
// styles.css and, when the project has javascript, script.js.
func Bundle(p *models.Project) ([]byte, error) {
	css := StripStyleTag(p.CSS)
	js := StripScriptTag(p.Script)

	doc, err := parse(p.HTML)
	if err != nil {
		return nil, err
	}
	doc.Find("head").First().AppendHtml(`<link rel="stylesheet" href="` + StylesFile + `"/>`)
	if js != "" {
		doc.Find("body").First().AppendHtml(`<script src="` + ScriptFile + `"></script>`)
	}
	index, err := render(doc)
	if err != nil {
		return nil, err
	}

	files := []bundleFile{
		{IndexFile, index},
		{StylesFile, []byte(css)},
	}
	if js != "" {
		files = append(files, bundleFile{ScriptFile, []byte(js)})
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			return nil, fmt.Errorf("bundle create %s: %w", f.name, err)
		}
		if _, err := w.Write(f.data); err != nil {
			return nil, fmt.Errorf("bundle write %s: %w", f.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("bundle close: %w", err)
	}
	return buf.Bytes(), nil
}
