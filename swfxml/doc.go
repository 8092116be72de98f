// Package swfxml models the XML documents produced by JPEXS FFDec -swf2xml.
//
// A [Document] is an element tree with ordered attributes. drip only edits a
// handful of node shapes, so instead of a schema every [Element] carries a
// [Kind] derived from its name, its attributes and its parent:
//
//	<swf>                                    KindRoot
//	  <displayRect Xmax=".." .../>           KindHeader
//	  <tags>                                 KindTags
//	    <item type="DefineShapeTag" shapeId="3">          KindShape
//	      <shapeBounds .../>                              KindShapeBounds
//	    <item type="DefineSpriteTag" spriteId="5">        KindSprite
//	      <subTags>                                       KindSubTags
//	        <item characterId="2" depth="1" ...>          KindPlacement
//	          <matrix .../>                               KindMatrix
//	          <colorTransform .../>                       KindColorTransform
//	    <item type="DefineEditTextTag" characterID="9" initialText="...">  KindText
//	      <textColor type="RGBA" red=".." .../>           KindTextColor
//
// Everything else is KindOther and is written back untouched, attributes in
// their original order.
package swfxml
