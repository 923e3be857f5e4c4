// Package domain contains the entities shared by the showroom tools: site
// routes and their crawl hints. The types are free of I/O concerns so the
// sitemap, indexation and screenshot packages can all use them.
package domain
