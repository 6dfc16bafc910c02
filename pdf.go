package main

import (
	"fmt"
	"path/filepath"

	"github.com/playwright-community/playwright-go"
)

// exportPDF renders the generated digest HTML to an A4 PDF via a
// headless browser. Playwright manages its own timeouts; there is no
// context plumbing in its page API.
func exportPDF(htmlPath, pdfPath string) error {
	if err := playwright.Install(); err != nil {
		return fmt.Errorf("could not install playwright: %w", err)
	}

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("could not start playwright: %w", err)
	}
	defer pw.Stop()

	browser, err := pw.Chromium.Launch()
	if err != nil {
		return fmt.Errorf("could not launch browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.NewPage()
	if err != nil {
		return fmt.Errorf("could not create page: %w", err)
	}
	defer page.Close()

	absPath, err := filepath.Abs(htmlPath)
	if err != nil {
		return fmt.Errorf("could not resolve digest path: %w", err)
	}

	if _, err = page.Goto("file://" + absPath); err != nil {
		return fmt.Errorf("could not open digest HTML: %w", err)
	}

	_, err = page.PDF(playwright.PagePdfOptions{
		Path:            playwright.String(pdfPath),
		Format:          playwright.String("A4"),
		PrintBackground: playwright.Bool(true),
		Margin: &playwright.Margin{
			Top:    playwright.String("20mm"),
			Right:  playwright.String("18mm"),
			Bottom: playwright.String("20mm"),
			Left:   playwright.String("18mm"),
		},
	})
	if err != nil {
		return fmt.Errorf("could not render PDF: %w", err)
	}

	return nil
}
