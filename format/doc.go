// Package format turns model output into a self-contained, styled HTML fragment.
//
// # Overview
//
// The refinement loop asks the generator for HTML, but models regularly fall back to
// Markdown, or mix the two. This package makes the final output predictable:
//
//	html := format.Normalize(candidate)
//
// [Normalize] returns candidates that already pass [IsValid] untouched. Anything else goes
// through the Markdown [Transform] and is placed inside the standard container ([Wrap]).
// The container output always passes [IsValid], so Normalize is idempotent.
//
// # Transformer Stages
//
// [DefaultPipeline] runs these stages in order. Order matters: code is rendered first so
// nothing inside a code block is touched by later stages, and Bold runs before Italic so
// "**x**" is never read as two italics.
//
//  1. [FencedCode]   ```lang ... ``` blocks to <pre><code>
//  2. [InlineCode]   `x` to <code>
//  3. [Headings]     "# ", "## ", "### " lines to <h1>..<h3>
//  4. [BulletLists]  "- " lines to <li>, contiguous runs wrapped in <ul>
//  5. [Paragraphs]   remaining text lines to <p>
//  6. [Bold]         **x** to <strong>
//  7. [Italic]       *x* to <em>
//  8. [StrayFences]  unterminated ``` runs entity-encoded
//
// Each stage is a pure string function, so stages can be tested and recombined on their own:
//
//	p := format.NewPipeline(format.Headings, format.Paragraphs)
//	out := p.Transform("# Title\nbody")
//
// # Error Fragments
//
// [ErrorFragment] renders a fatal failure as a styled HTML block. It is also valid output,
// so callers can treat every response the same way.
package format
