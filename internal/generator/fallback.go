// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package generator

import "strings"

// FallbackHTML is served when every provider failed. It is self-contained
// apart from the Tailwind CDN script and must stay byte-stable.
const FallbackHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Website</title>
    <script src="https://cdn.tailwindcss.com"></script>
</head>
<body class="bg-white">
    <main class="flex items-center justify-center min-h-screen bg-gray-50">
        <div class="text-center px-6">
            <h1 class="text-4xl font-bold text-gray-900 mb-4">⚠️ Generation Partial</h1>
            <p class="text-xl text-gray-600 mb-8">The AI service encountered temporary issues.</p>
            <div class="bg-blue-50 border border-blue-200 rounded-lg p-6 max-w-md mx-auto">
                <p class="text-sm text-blue-700">✓ Both AI providers were attempted</p>
                <p class="text-sm text-blue-700">✓ Please try again in a moment</p>
                <p class="text-sm text-blue-700">✓ Check backend logs for details</p>
            </div>
            <button onclick="location.reload()" class="mt-8 px-6 py-3 bg-blue-600 text-white rounded-lg hover:bg-blue-700 transition">
                Try Again
            </button>
        </div>
    </main>
</body>
</html>`

// Placeholder stylesheet and script returned with FallbackHTML.
const (
	FallbackCSS    = "<style>/* Styles included in HTML */</style>"
	FallbackScript = "<script>/* Fallback mode */</script>"
)

// FallbackSite returns the static page used when both providers fail.
func FallbackSite() Site {
	return Site{HTML: FallbackHTML, CSS: FallbackCSS, Script: FallbackScript}
}

// Placeholder stylesheet and script for ErrorSite.
const (
	ErrorCSS    = "<style>/* Fallback CSS */</style>"
	ErrorScript = "<script>/* Fallback JS */</script>"
)

// ErrorSite is the page returned when a site was generated but could not be
// stored. It reuses the fallback layout under a different document title.
func ErrorSite() Site {
	html := strings.Replace(FallbackHTML, "<title>Website</title>", "<title>Generation Error</title>", 1)
	return Site{HTML: html, CSS: ErrorCSS, Script: ErrorScript}
}
