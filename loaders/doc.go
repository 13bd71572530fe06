// Package loaders fetches documents from external sources.
//
// Each loader implements the Loader interface and produces original
// documents carrying provenance metadata (title, link, source). The
// documents are meant to be fed to excerpt.Generator and indexed in a
// vector store.
//
// Available loaders:
//
//   - HTMLLoader: fetches web pages and converts them to markdown
//   - SitemapLoader: discovers page URLs from XML sitemaps
//   - GitHubRepoLoader: walks a repository tree and loads matching files
//   - DiscourseLoader: loads recent forum topics and their posts
//   - Multi: fans out over several loaders concurrently
package loaders
