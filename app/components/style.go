package components

import (
	"encoding/hex"
	"html/template"
	"strings"

	"golang.org/x/crypto/sha3"
)

// styleSource is the page theme; "&" stands for the scoped root class.
const styleSource = `& {
  width: 640px;
  margin: 240px auto;
  font-family: 'Helvetica';
  line-height: 30px;
}
& .actionButton {
  background: lightblue;
  color: white;
}
& .navButton button, & .titles button {
  border: none;
  background: none;
  padding: 0;
  cursor: pointer;
  font: inherit;
}
& .titles {
  display: inline-block;
  float: left;
  width: 120px;
  list-style: none;
  margin: 0;
  padding: 0;
}
& .titles .active {
  font-weight: bold;
}
& .postContent {
  display: inline-block;
  float: left;
  width: 320px;
  margin: 20px;
  font-size: 14px;
}
& .postContent .title {
  font-weight: bold;
  line-height: 40px;
}
& .comments {
  margin-top: 20px;
  display: inline-block;
  float: left;
  width: 160px;
  font-size: 14px;
}
& .comments .title {
  color: grey;
  line-height: 40px;
}
& .comments .comment {
  border-top: 1px solid lightgrey;
  padding: 5px 0;
  font-size: 13px;
}
& .comments .comment .author {
  color: darkgrey;
}
& .comments .comment .content {
  color: grey;
}
`

// ScopeClass is the generated class attached to the page's root element
var ScopeClass = scopeClass(styleSource)

var scopedStyle = template.CSS(strings.ReplaceAll(styleSource, "&", "."+ScopeClass))

func scopeClass(source string) string {
	sum := sha3.Sum256([]byte(source))
	return "sc-" + hex.EncodeToString(sum[:5])
}
