package languages

// PythonQuery finds os.environ[...], os.environ.get(...) and os.getenv(...)
const PythonQuery = `
[
  (subscript
    value: (attribute
      object: (identifier) @obj
      attribute: (identifier) @attr
    )
    subscript: [
      (string) @key
      (binary_operator) @full_expr
      (identifier) @var
    ]
  )
  (call
    function: (attribute
      object: (identifier) @obj
      attribute: (identifier) @fn
    )
    arguments: (argument_list
      .
      [
        (string) @key
        (binary_operator) @full_expr
        (identifier) @var
      ]
    )
  )
  (call
    function: (attribute
      object: (attribute
        object: (identifier) @obj
        attribute: (identifier) @attr
      )
      attribute: (identifier) @fn
    )
    arguments: (argument_list
      .
      [
        (string) @key
        (binary_operator) @full_expr
        (identifier) @var
      ]
    )
  )
]
`

func matchPython(c Captures) (Match, bool) {
	if c["obj"] != "os" {
		return Match{}, false
	}
	attr, hasAttr := c["attr"]
	fn, hasFn := c["fn"]
	switch {
	case hasAttr && !hasFn: // os.environ[...]
		if attr != "environ" {
			return Match{}, false
		}
	case hasAttr && hasFn: // os.environ.get(...)
		if attr != "environ" || fn != "get" {
			return Match{}, false
		}
	case hasFn: // os.getenv(...)
		if fn != "getenv" {
			return Match{}, false
		}
	default:
		return Match{}, false
	}
	return argument(c)
}
