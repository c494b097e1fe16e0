package languages

// RustQuery finds env::var, env::var_os and their std::env:: forms
const RustQuery = `
[
  (call_expression
    function: (scoped_identifier
      path: (identifier) @path
      name: (identifier) @fn
    )
    arguments: (arguments
      .
      [
        (string_literal) @key
        (binary_expression) @full_expr
        (identifier) @var
      ]
    )
  )
  (call_expression
    function: (scoped_identifier
      path: (scoped_identifier
        path: (identifier) @path1
        name: (identifier) @path2
      )
      name: (identifier) @fn
    )
    arguments: (arguments
      .
      [
        (string_literal) @key
        (binary_expression) @full_expr
        (identifier) @var
      ]
    )
  )
]
`

func matchRust(c Captures) (Match, bool) {
	if fn := c["fn"]; fn != "var" && fn != "var_os" {
		return Match{}, false
	}
	if path1, ok := c["path1"]; ok {
		if path1 != "std" || c["path2"] != "env" {
			return Match{}, false
		}
	} else if c["path"] != "env" {
		return Match{}, false
	}
	return argument(c)
}
