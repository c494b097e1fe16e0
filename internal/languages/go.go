package languages

// GoQuery finds os.Getenv and os.LookupEnv calls whose argument is a string
// literal, a concatenation or an identifier. The package and function names
// are checked in matchGo rather than with predicates.
const GoQuery = `
(call_expression
  function: (selector_expression
    operand: (identifier) @obj
    field: (field_identifier) @fn
  )
  arguments: (argument_list
    [
      (interpreted_string_literal) @key
      (raw_string_literal) @key
      (binary_expression) @full_expr
      (identifier) @var
    ]
  )
)
`

func matchGo(c Captures) (Match, bool) {
	if c["obj"] != "os" || (c["fn"] != "Getenv" && c["fn"] != "LookupEnv") {
		return Match{}, false
	}
	return argument(c)
}
