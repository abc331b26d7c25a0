/*
Package templating binds marker templates to a plugin's configuration,
labels and page.

A TemplateManager keeps the template files of a data directory in memory
and reloads them on request. A TemplateHelper wraps a marker.Template and
adds the plugin-level operations: loading the configured template file,
filling ###LABEL_*### markers from a Localizer, filling ###CLASS_*###
markers with prefixed class attributes and adding the configured style
sheet to the page header.

A typical plugin renders a page like this:

	helper, err := templating.NewTemplateHelper(logger, config, source, localizer, pageCtx)
	if err != nil {
		return err
	}
	if err = helper.LoadTemplate(); err != nil {
		return err
	}
	_ = helper.SetLabels()
	_ = helper.SetCSS()
	helper.AddCSSToPageHeader()
	helper.SetMarker("title", title, "")
	body, err := helper.GetSubpart("")
*/
package templating
