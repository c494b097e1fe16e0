package languages

// JavaScriptQuery finds process.env.KEY and process.env[...] lookups. It is
// shared by the JavaScript, TypeScript and TSX grammars.
const JavaScriptQuery = `
[
  (member_expression
    object: (member_expression
      object: (identifier) @obj
      property: (property_identifier) @prop
    )
    property: (property_identifier) @key
  )
  (subscript_expression
    object: (member_expression
      object: (identifier) @obj
      property: (property_identifier) @prop
    )
    index: [
      (string) @key
      (binary_expression) @full_expr
      (template_string) @full_expr
      (identifier) @var
    ]
  )
]
`

func matchJavaScript(c Captures) (Match, bool) {
	if c["obj"] != "process" || c["prop"] != "env" {
		return Match{}, false
	}
	return argument(c)
}
