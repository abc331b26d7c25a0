/*
Package marker implements a small substitution engine for HTML templates that
use markers and subparts.

A marker is a named placeholder such as ###TITLE### that is replaced by a value
at render time. A subpart is a named region of the template that is wrapped in
two identical HTML comments:

	<!-- ###LIST_ITEM### -->
	<li>###ITEM_TITLE###</li>
	<!-- ###LIST_ITEM### -->

Subparts can be rendered on their own, hidden, replaced with synthetic content
and nested in each other. Names are case-insensitive on input and stored in
upper case. A name starts with a letter, contains only letters, digits and
underscores, and does not end with an underscore.

A Template is not safe for concurrent use. Create one Template per render.
*/
package marker
